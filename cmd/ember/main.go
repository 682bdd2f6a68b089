package main

import (
	"context"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/geobind/ember/engine"
	"github.com/geobind/ember/engine/grpcengine"
	"github.com/geobind/ember/raster"
)

const SOURCE string = `source`
const TABLE string = `table`
const ENGINE string = `engine`
const ENGINECONFIG string = `engineConfig`
const CRS string = `crs`
const ZOOM string = `zoom`
const FILLVALUE string = `fillValue`
const CELLTYPE string = `cellType`
const PARTITIONER string = `partitioner`
const NUMPARTITIONS string = `numPartitions`
const VERBOSE string = `verbose`

func main() {
	app := cli.NewApp()
	app.Name = "ember"
	app.Usage = "Burn vector geometries into a tiled raster layer on a remote engine"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     SOURCE,
			Aliases:  []string{"s"},
			Usage:    "Source geometries, a GeoJSON feature collection or a GeoPackage",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(SOURCE)},
		},
		&cli.StringFlag{
			Name:     TABLE,
			Aliases:  []string{"t"},
			Usage:    "GeoPackage table to read. Defaults to the first geometry table",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(TABLE)},
		},
		&cli.StringFlag{
			Name:     ENGINE,
			Aliases:  []string{"e"},
			Usage:    "Engine gateway endpoint (host:port)",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(ENGINE)},
		},
		&cli.StringFlag{
			Name:     ENGINECONFIG,
			Usage:    "Engine JSON config file. Overrides --engine",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(ENGINECONFIG)},
		},
		&cli.StringFlag{
			Name:     CRS,
			Usage:    "Spatial reference of the source geometries, e.g. 4326",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(CRS)},
		},
		&cli.IntFlag{
			Name:     ZOOM,
			Aliases:  []string{"z"},
			Usage:    "Zoom level of the output layer",
			Required: true,
			EnvVars:  []string{strcase.ToScreamingSnake(ZOOM)},
		},
		&cli.Float64Flag{
			Name:     FILLVALUE,
			Usage:    "Value burned into pixels intersecting a geometry",
			Value:    1.0,
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(FILLVALUE)},
		},
		&cli.StringFlag{
			Name:     CELLTYPE,
			Usage:    "Cell data type of the output tiles",
			Value:    string(engine.CellTypeFloat64),
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(CELLTYPE)},
		},
		&cli.StringFlag{
			Name:     PARTITIONER,
			Usage:    "Partitioner for the output layer (hash, range or space)",
			Value:    "hash",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(PARTITIONER)},
		},
		&cli.IntFlag{
			Name:     NUMPARTITIONS,
			Usage:    "Repartition the submitted data to this many partitions",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(NUMPARTITIONS)},
		},
		&cli.BoolFlag{
			Name:     VERBOSE,
			Aliases:  []string{"v"},
			Usage:    "Log engine calls",
			Required: false,
			EnvVars:  []string{strcase.ToScreamingSnake(VERBOSE)},
		},
	}

	app.Action = func(c *cli.Context) error {
		level := zerolog.InfoLevel
		if c.Bool(VERBOSE) {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

		cfg, err := engineConfig(c)
		if err != nil {
			return err
		}

		geoms, err := readGeometries(c.String(SOURCE), c.String(TABLE))
		if err != nil {
			return err
		}
		log.Info().Int("geometries", len(geoms)).Str("source", c.String(SOURCE)).Msg("source read")

		ctx := context.Background()
		gw, err := grpcengine.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer gw.Close()

		layer, err := raster.New(gw).Rasterize(ctx, raster.Geoms(geoms...), raster.RasterizeParams{
			CRS:           c.String(CRS),
			Zoom:          c.Int(ZOOM),
			FillValue:     c.Float64(FILLVALUE),
			CellType:      engine.CellType(c.String(CELLTYPE)),
			NumPartitions: c.Int(NUMPARTITIONS),
			Partitioner:   engine.Partitioner(c.String(PARTITIONER)),
		})
		if err != nil {
			return err
		}

		log.Info().
			Str("layer", string(layer.Handle())).
			Str("layerType", string(layer.LayerType())).
			Msg("rasterized")
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Fatal().Err(err).Send()
	}
}

func engineConfig(c *cli.Context) (grpcengine.Config, error) {
	if path := c.String(ENGINECONFIG); path != "" {
		return grpcengine.LoadConfig(path)
	}
	cfg := grpcengine.Config{Endpoint: c.String(ENGINE)}
	if cfg.Endpoint == "" {
		return cfg, cli.Exit("either --engine or --engineConfig is required", 2)
	}
	if cfg.MaxMessageBytes == 0 {
		cfg.MaxMessageBytes = 64 << 20
	}
	return cfg, nil
}
