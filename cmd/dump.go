package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
	"github.com/df07/go-raytracer-bvh/pkg/logger"
)

var spewConfig *spew.ConfigState

func init() {
	spewConfig = spew.NewDefaultConfig()
	spewConfig.DisableCapacities = true
	spewConfig.DisablePointerAddresses = true
}

// Dump lists the nodes of a hierarchy, either freshly built from the
// configured scene or loaded from an archive written by build --out.
func Dump(ctx *cli.Context) error {
	cfg, err := setup(ctx)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var bvh *accel.BVH
	if in := ctx.String("in"); in != "" {
		// The archive only holds the node store; the primitives are
		// regenerated from the same scene settings
		prims, _, err := generateBounded(cfg)
		if err != nil {
			return err
		}
		if bvh, err = accel.Load(in, prims); err != nil {
			return err
		}
	} else {
		if bvh, _, err = buildHierarchy(cfg); err != nil {
			return err
		}
	}

	nodes := bvh.Nodes()
	limit := ctx.Int("limit")
	if limit <= 0 || limit > len(nodes) {
		limit = len(nodes)
	}

	if ctx.Bool("raw") {
		fmt.Fprint(ctx.App.Writer, spewConfig.Sdump(bvh.Stats(), nodes[:limit]))
		return nil
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Node", "Kind", "Min", "Max", "Children / Prims", "Axis"})
	for i, node := range nodes[:limit] {
		if node.Leaf {
			table.Append([]string{
				fmt.Sprintf("%d", i),
				"leaf",
				formatVec(node.Bounds.Min),
				formatVec(node.Bounds.Max),
				fmt.Sprintf("[%d, %d)", node.Offset, node.Offset+node.Count),
				"",
			})
			continue
		}
		table.Append([]string{
			fmt.Sprintf("%d", i),
			"inner",
			formatVec(node.Bounds.Min),
			formatVec(node.Bounds.Max),
			fmt.Sprintf("%d, %d", node.Left(), node.Right()),
			string("xyz"[node.Axis]),
		})
	}
	table.SetFooter([]string{"", "", "", "", "Shown", fmt.Sprintf("%d / %d", limit, len(nodes))})
	table.Render()
	return nil
}

func formatVec(v core.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
