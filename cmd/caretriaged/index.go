package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb/bleveindex"
)

func indexCMD() *cobra.Command {
	var cfgPath string
	var indexPath string

	var index = &cobra.Command{
		Use:   "index",
		Short: "Create and seed the knowledge-base search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if indexPath == "" {
				cfg, err := config.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				indexPath = cfg.Search.IndexPath
			}
			if indexPath == "" {
				return fmt.Errorf("index path required (--path or search.index_path)")
			}
			idx, err := bleveindex.Open(indexPath)
			if err != nil {
				return err
			}
			defer idx.Close()
			if err := idx.Seed(); err != nil {
				return err
			}
			n, err := idx.DocCount()
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d documents at %s\n", n, indexPath)
			return nil
		},
	}
	index.Flags().StringVar(&indexPath, "path", "", "index directory (default from config)")
	index.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return index
}
