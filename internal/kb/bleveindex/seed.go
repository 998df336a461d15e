package bleveindex

import "github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"

// SeedDocuments is the built-in medical knowledge base corpus, spanning
// administrative and clinical material of varying depth.
func SeedDocuments() []kb.Document {
	return []kb.Document{
		{
			Title:    "Office Hours and Contact Information",
			Content:  "Our clinic is open Monday through Friday from 8:00 AM to 6:00 PM, and Saturday from 9:00 AM to 1:00 PM. We are closed on Sundays and major holidays. For appointments, call (555) 123-4567. For urgent matters after hours, call our 24/7 nurse hotline at (555) 123-4568. Our address is 123 Medical Plaza, Healthcare City, HC 12345.",
			Category: "administrative",
			Source:   "clinic_handbook",
		},
		{
			Title:    "Appointment Scheduling and Cancellation Policy",
			Content:  "Appointments can be scheduled by calling our office, using the patient portal, or through our mobile app. We request 24-hour notice for cancellations to avoid a $50 cancellation fee. Same-day appointments are available for urgent concerns. New patient appointments typically last 45 minutes, while follow-up visits are 20-30 minutes.",
			Category: "administrative",
			Source:   "patient_guide",
		},
		{
			Title:    "Common Cold vs Influenza: Diagnosis and Management",
			Content:  "The common cold is caused by rhinoviruses and typically presents with gradual onset of runny nose, sore throat, cough, and mild fatigue. Symptoms last 7-10 days and are self-limiting. Influenza (flu) is caused by influenza viruses and presents with sudden onset of high fever (101-104°F), severe body aches, headache, dry cough, and extreme fatigue. Flu symptoms are more severe and can last 1-2 weeks. Treatment for cold is supportive (rest, fluids, over-the-counter medications). Flu may require antiviral medications (oseltamivir, zanamivir) if started within 48 hours of symptom onset. Annual flu vaccination is the best prevention.",
			Category: "clinical",
			Source:   "clinical_guidelines",
		},
		{
			Title:    "Diabetes Mellitus: Diagnosis, Symptoms, and Monitoring",
			Content:  "Diabetes mellitus is a metabolic disorder characterized by hyperglycemia. Type 1 diabetes results from autoimmune destruction of pancreatic beta cells, requiring insulin therapy. Type 2 diabetes involves insulin resistance and progressive beta cell dysfunction. Common symptoms include polyuria (frequent urination), polydipsia (excessive thirst), polyphagia (increased hunger), unexplained weight loss, fatigue, and blurred vision. Diagnosis is made with fasting glucose ≥126 mg/dL, HbA1c ≥6.5%, or 2-hour glucose ≥200 mg/dL during oral glucose tolerance test. Management includes lifestyle modifications (diet, exercise), oral medications (metformin, sulfonylureas, SGLT2 inhibitors), and insulin therapy when needed. Target HbA1c <7% for most patients. Regular monitoring for complications including retinopathy, nephropathy, neuropathy, and cardiovascular disease is essential.",
			Category: "clinical",
			Source:   "endocrinology_manual",
		},
		{
			Title:    "Hypertension: Classification, Evaluation, and Treatment Guidelines",
			Content:  "Hypertension is defined as systolic BP ≥130 mmHg or diastolic BP ≥80 mmHg. Classification: Normal (<120/80), Elevated (120-129/<80), Stage 1 (130-139 or 80-89), Stage 2 (≥140 or ≥90). Secondary causes should be evaluated including renal disease, primary aldosteronism, pheochromocytoma, and Cushing's syndrome. Initial evaluation includes ECG, urinalysis, basic metabolic panel, lipid panel, and assessment of target organ damage. First-line medications include ACE inhibitors, ARBs, calcium channel blockers, and thiazide diuretics. Lifestyle modifications are essential: weight loss, DASH diet, sodium restriction (<2300 mg/day), regular exercise (150 min/week), and alcohol moderation. Target BP <130/80 for most adults.",
			Category: "clinical",
			Source:   "cardiology_guidelines",
		},
		{
			Title:    "Differential Diagnosis: Acute Abdominal Pain",
			Content:  "Systematic approach to acute abdominal pain by anatomical location: Right Upper Quadrant (RUQ) - cholecystitis, hepatitis, hepatic abscess, right lower lobe pneumonia, peptic ulcer disease. Left Upper Quadrant (LUQ) - splenic infarct/rupture, gastritis, pancreatitis, left lower lobe pneumonia. Right Lower Quadrant (RLQ) - appendicitis, ovarian torsion, ectopic pregnancy, inflammatory bowel disease (Crohn's), kidney stone, testicular torsion. Left Lower Quadrant (LLQ) - diverticulitis, sigmoid volvulus, ovarian pathology, ectopic pregnancy, inflammatory bowel disease. Epigastric - peptic ulcer disease, pancreatitis, myocardial infarction (atypical), GERD, gastritis. Red flags requiring immediate evaluation: hemodynamic instability, peritoneal signs, severe constant pain, abdominal distension, absence of bowel sounds.",
			Category: "clinical",
			Source:   "emergency_medicine",
		},
		{
			Title:    "Vaccine Mechanisms: Immunology and Efficacy",
			Content:  "Vaccines induce active immunity through presentation of antigens to the immune system, stimulating both humoral (antibody-mediated) and cell-mediated immune responses. Vaccine types: Live attenuated vaccines (MMR, varicella) contain weakened pathogens that replicate, providing robust immunity but contraindicated in immunocompromised patients. Inactivated vaccines (polio, hepatitis A) contain killed pathogens requiring adjuvants and booster doses. Subunit vaccines (hepatitis B, HPV) contain specific antigens with excellent safety profiles. mRNA vaccines (COVID-19) deliver genetic instructions for antigen production, inducing strong immune responses without live virus. Herd immunity occurs when >80-95% of population is vaccinated (varies by disease), protecting vulnerable individuals who cannot be vaccinated.",
			Category: "clinical",
			Source:   "immunology_textbook",
		},
	}
}

// Seed populates the index with the built-in corpus.
func (i *Index) Seed() error {
	return i.AddBatch(SeedDocuments())
}
