// Package cmd implements the bvhtool commands.
package cmd

import (
	"github.com/urfave/cli"
)

// NewApp returns the bvhtool command line application
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bvhtool"
	app.Usage = "build, inspect and benchmark bounding volume hierarchies"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-file",
			Usage: "also write JSON logs to this rotating file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build a hierarchy over a procedural scene and print its statistics",
			Description: `
Generate the configured scene, build a BVH over its bounded primitives and
print node, leaf and depth statistics. The node store can be checked with
--validate and written to a zip archive with --out.`,
			Flags: append(sceneFlags(),
				cli.BoolFlag{
					Name:  "validate",
					Usage: "check the structural invariants of the built hierarchy",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "write the node store to this zip archive",
				},
			),
			Action: Build,
		},
		{
			Name:  "bench",
			Usage: "compare the hierarchy against a linear scan",
			Description: `
Trace the same random rays through the BVH and through a brute-force scan,
report timings for both and fail if any nearest hit differs.`,
			Flags: append(sceneFlags(),
				cli.IntFlag{
					Name:  "rays, r",
					Usage: "number of random rays",
				},
				cli.IntFlag{
					Name:  "workers, w",
					Usage: "number of query workers (0 = one per CPU)",
				},
				cli.BoolFlag{
					Name:  "axis-aligned",
					Usage: "make every other ray axis aligned",
				},
				cli.BoolFlag{
					Name:  "shadows",
					Usage: "cast a shadow ray from every hit to a light above the scene",
				},
			),
			Action: Bench,
		},
		{
			Name:  "dump",
			Usage: "list the nodes of a hierarchy",
			Flags: append(sceneFlags(),
				cli.StringFlag{
					Name:  "in, i",
					Usage: "load the node store from this archive instead of building it",
				},
				cli.IntFlag{
					Name:  "limit",
					Value: 32,
					Usage: "maximum number of nodes to print (0 = all)",
				},
				cli.BoolFlag{
					Name:  "raw",
					Usage: "dump the node structs verbatim",
				},
			),
			Action: Dump,
		},
		{
			Name:   "serve",
			Usage:  "serve ray queries over HTTP",
			Flags:  append(sceneFlags(), cli.IntFlag{Name: "port, p", Usage: "port to listen on"}),
			Action: Serve,
		},
		{
			Name:   "scenes",
			Usage:  "list the procedural scene kinds",
			Action: ListScenes,
		},
		{
			Name:      "config",
			Usage:     "write the effective configuration as YAML",
			ArgsUsage: "output.yaml",
			Flags:     sceneFlags(),
			Action:    WriteConfig,
		},
	}
	return app
}
