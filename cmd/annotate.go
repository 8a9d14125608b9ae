package cmd

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/mj1618/uitree/internal/annotate"
	"github.com/mj1618/uitree/internal/uitree"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Draw element boxes and tags on a screenshot",
	Long: `Reduce a dump and draw each element's bounding box and tag on the matching
screenshot, so a vision model can refer to elements by tag.

Examples:
  uitree annotate --dump screen.xml --image screen.png --out marked.png
  uitree annotate --dump screen.xml --image screen.png --out marked.png --label coords --scale 0.5`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	addReduceFlags(annotateCmd)
	annotateCmd.Flags().String("dump", "", "UI hierarchy dump (- for stdin)")
	annotateCmd.Flags().String("image", "", "Screenshot taken with the dump (png or jpeg)")
	annotateCmd.Flags().String("out", "", "Output PNG path")
	annotateCmd.Flags().String("label", "tags", "Label drawn on each element: tags, coords")
	annotateCmd.Flags().Float64("scale", 1, "Scale factor for the output image")
	_ = annotateCmd.MarkFlagRequired("dump")
	_ = annotateCmd.MarkFlagRequired("image")
	_ = annotateCmd.MarkFlagRequired("out")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	dumpPath, _ := cmd.Flags().GetString("dump")
	imagePath, _ := cmd.Flags().GetString("image")
	outPath, _ := cmd.Flags().GetString("out")
	label, _ := cmd.Flags().GetString("label")
	scale, _ := cmd.Flags().GetFloat64("scale")

	var mode annotate.LabelMode
	switch label {
	case "tags":
		mode = annotate.LabelTags
	case "coords":
		mode = annotate.LabelCoords
	default:
		return fmt.Errorf("unsupported label: %s (use tags or coords)", label)
	}

	raw, err := readInput(cmd.InOrStdin(), dumpPath)
	if err != nil {
		return err
	}
	res, err := uitree.Process(raw, reduceOptions(cmd))
	if err != nil {
		return err
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Errorf("open screenshot: %w", err)
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}

	marked, err := annotate.Annotate(img, res.Elements, annotate.Options{
		Mode:   mode,
		Screen: res.Screen,
		Scale:  scale,
	})
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := png.Encode(out, marked); err != nil {
		out.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	logger.Info("annotated screenshot",
		zap.String("out", outPath),
		zap.Int("elements", len(res.Elements)),
	)
	return nil
}
