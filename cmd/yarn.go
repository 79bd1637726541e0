package cmd

import (
	"fmt"
	"strconv"

	"github.com/rogersnm/stitchbook/internal/markdown"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
	"github.com/spf13/cobra"
)

var yarnCmd = &cobra.Command{
	Use:   "yarn",
	Short: "Manage the yarn stash",
}

var yarnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add yarn to the stash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		y := &model.Yarn{}
		y.Brand, _ = cmd.Flags().GetString("brand")
		y.Color, _ = cmd.Flags().GetString("color")
		y.ColorValue, _ = cmd.Flags().GetString("color-value")
		y.Material, _ = cmd.Flags().GetString("material")
		y.Weight, _ = cmd.Flags().GetString("weight")
		y.Stock, _ = cmd.Flags().GetFloat64("stock")
		unit, _ := cmd.Flags().GetString("unit")
		y.Unit = model.Unit(unit)
		y.PurchasedFrom, _ = cmd.Flags().GetString("from")
		y.Price, _ = cmd.Flags().GetFloat64("price")

		imagePaths, _ := cmd.Flags().GetStringSlice("image")
		images, err := imageDataURIs(imagePaths)
		if err != nil {
			return err
		}
		y.Images = images

		y, err = st.Yarns().Insert(cmd.Context(), y)
		if err != nil {
			return err
		}
		fmt.Printf("Added yarn %s (%s)\n", store.YarnLabel(y), y.ID)
		return nil
	},
}

var yarnListCmd = &cobra.Command{
	Use:   "list",
	Short: "List yarn",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		yarns, err := st.Yarns().ListAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(markdown.RenderYarnTable(store.FilterYarns(yarns, filter)))
		return nil
	},
}

var yarnShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show yarn details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y, err := st.Yarns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fields := []string{
			markdown.RenderField("ID", y.ID),
			markdown.RenderField("Color", orDash(markdown.RenderSwatch(y.ColorValue))),
			markdown.RenderField("Material", orDash(y.Material)),
			markdown.RenderField("Weight", orDash(y.Weight)),
			markdown.RenderField("Stock", markdown.FormatQuantity(y.Stock, y.Unit)),
			markdown.RenderField("Bought at", orDash(y.PurchasedFrom)),
			markdown.RenderField("Price", strconv.FormatFloat(y.Price, 'f', 2, 64)),
			markdown.RenderField("Images", strconv.Itoa(len(y.Images))),
			markdown.RenderField("Created", formatTimestamp(y.CreatedAt)),
			markdown.RenderField("Updated", formatTimestamp(y.UpdatedAt)),
		}
		fmt.Print(markdown.RenderEntityHeader(store.YarnLabel(y), fields))
		return nil
	},
}

var yarnUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update yarn, e.g. after using some of it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y, err := st.Yarns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		for name, dst := range map[string]*string{
			"brand":       &y.Brand,
			"color":       &y.Color,
			"color-value": &y.ColorValue,
			"material":    &y.Material,
			"weight":      &y.Weight,
			"from":        &y.PurchasedFrom,
		} {
			if flags.Changed(name) {
				*dst, _ = flags.GetString(name)
			}
		}
		if flags.Changed("unit") {
			unit, _ := flags.GetString("unit")
			y.Unit = model.Unit(unit)
		}
		if flags.Changed("stock") {
			y.Stock, _ = flags.GetFloat64("stock")
		}
		if flags.Changed("use") {
			used, _ := flags.GetFloat64("use")
			if used < 0 {
				return fmt.Errorf("--use must not be negative, got %v", used)
			}
			y.Stock -= used
		}
		if flags.Changed("price") {
			y.Price, _ = flags.GetFloat64("price")
		}
		if err := y.Validate(); err != nil {
			return err
		}
		if _, err := st.Yarns().Upsert(cmd.Context(), y); err != nil {
			return err
		}
		fmt.Printf("Updated yarn %s, %s left\n", y.ID, markdown.FormatQuantity(y.Stock, y.Unit))
		return nil
	},
}

var yarnDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete yarn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		y, err := st.Yarns().GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := confirm(cmd, fmt.Sprintf("Delete yarn %s (%s)?", store.YarnLabel(y), y.ID)); err != nil {
			return err
		}
		if err := st.Yarns().DeleteByID(cmd.Context(), y.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted yarn %s\n", y.ID)
		return nil
	},
}

func addYarnFieldFlags(c *cobra.Command) {
	c.Flags().StringP("brand", "b", "", "brand")
	c.Flags().String("color", "", "color name")
	c.Flags().String("color-value", "", "swatch color, e.g. #e8a0b4")
	c.Flags().String("material", "", "fiber content")
	c.Flags().String("weight", "", "weight class, e.g. DK")
	c.Flags().Float64("stock", 0, "amount in stock")
	c.Flags().StringP("unit", "u", string(model.UnitGrams), "unit (g, oz, balls, m, yds)")
	c.Flags().String("from", "", "where it was bought")
	c.Flags().Float64("price", 0, "price")
}

func init() {
	addYarnFieldFlags(yarnAddCmd)
	yarnAddCmd.Flags().StringSlice("image", nil, "image file to embed (repeatable)")
	addYarnFieldFlags(yarnUpdateCmd)
	yarnUpdateCmd.Flags().Float64("use", 0, "subtract this amount from the stock")
	yarnListCmd.Flags().StringP("filter", "q", "", "filter by brand or color")
	yarnDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	yarnCmd.AddCommand(yarnAddCmd)
	yarnCmd.AddCommand(yarnListCmd)
	yarnCmd.AddCommand(yarnShowCmd)
	yarnCmd.AddCommand(yarnUpdateCmd)
	yarnCmd.AddCommand(yarnDeleteCmd)
	rootCmd.AddCommand(yarnCmd)
}
