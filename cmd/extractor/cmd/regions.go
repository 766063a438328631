package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [image]",
	Short: "Detect and classify text regions without running OCR",
	Long: `Run region detection and classification on a document image and
print the candidate regions as JSON.

Examples:
  extractor regions scan.png --type rent_roll
  extractor regions scan.png --type rent_roll --overlay regions.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegions,
}

func init() {
	regionsCmd.Flags().String("type", "", "document type used for field classification")
	regionsCmd.Flags().String("overlay", "", "write a PNG with region boxes drawn over the input")
	regionsCmd.Flags().String("field", "", "only output regions classified as this field")
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input image provided")
	}
	cfg := GetConfig()
	docType, _ := cmd.Flags().GetString("type")

	img, _, err := utils.LoadImage(args[0])
	if err != nil {
		return err
	}

	managerCfg := region.DefaultManagerConfig()
	managerCfg.Detector.EASTModelPath = cfg.Detection.EASTModelPath
	managerCfg.Detector.MinRegionArea = cfg.Detection.MinRegionArea
	managerCfg.Detector.MaxRegionArea = cfg.Detection.MaxRegionArea
	managerCfg.MergeIoUThreshold = cfg.Detection.MergeIoUThreshold
	managerCfg.ConfidenceThreshold = cfg.Detection.ConfidenceThreshold
	manager := region.NewManager(managerCfg)

	var regions []region.Region
	if field, _ := cmd.Flags().GetString("field"); field != "" {
		regions = manager.SuggestRegionsForField(field, docType, img)
	} else {
		regions = manager.SuggestRegions(docType, img)
	}

	if overlay, _ := cmd.Flags().GetString("overlay"); overlay != "" {
		rendered := region.RenderRegionOverlay(img, regions)
		if err := utils.SaveImage(rendered, overlay); err != nil {
			return fmt.Errorf("write overlay: %w", err)
		}
	}

	data, err := json.MarshalIndent(regions, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
