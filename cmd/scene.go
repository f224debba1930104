package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// ListScenes prints the procedural scene kinds.
func ListScenes(ctx *cli.Context) error {
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Kind", "Description"})
	for _, kind := range scene.Kinds() {
		table.Append([]string{kind, scene.Describe(kind)})
	}
	table.Render()
	return nil
}

// WriteConfig writes the effective configuration, after the config file
// and flags are applied, to the file named by the first argument.
func WriteConfig(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("missing output file")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	path := ctx.Args().First()
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "config written to %s\n", path)
	return nil
}
