package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	"github.com/go-spatial/geom/encoding/gpkg"
	"golang.org/x/exp/maps"
)

// readGeometries loads the geometries to rasterize from a GeoJSON feature
// collection or a GeoPackage table, by file extension.
func readGeometries(file, table string) ([]geom.Geometry, error) {
	switch strings.ToLower(path.Ext(file)) {
	case ".json", ".geojson":
		return readGeoJSON(file)
	case ".gpkg":
		return readGeopackage(file, table)
	default:
		return nil, fmt.Errorf("unsupported source %q, want .geojson, .json or .gpkg", file)
	}
}

func readGeoJSON(file string) ([]geom.Geometry, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	var fc geojson.FeatureCollection
	if err = json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}
	geoms := make([]geom.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		geoms = append(geoms, f.Geometry.Geometry)
	}
	return geoms, nil
}

func readGeopackage(file, table string) ([]geom.Geometry, error) {
	handle, err := gpkg.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening GeoPackage: %w", err)
	}
	defer handle.Close()

	geomColumns, err := geometryColumns(handle)
	if err != nil {
		return nil, err
	}
	if table == "" {
		for name := range geomColumns {
			table = name
			break
		}
	}
	gcolumn, ok := geomColumns[table]
	if !ok {
		return nil, fmt.Errorf("no geometry table %q in %s, have %v", table, file, maps.Keys(geomColumns))
	}

	rows, err := handle.Query(fmt.Sprintf(`SELECT "%v" FROM "%v";`, gcolumn, table))
	if err != nil {
		return nil, fmt.Errorf("reading table %q: %w", table, err)
	}
	defer rows.Close()

	var geoms []geom.Geometry
	for rows.Next() {
		var blob []byte
		if err = rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		sb, err := gpkg.DecodeGeometry(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding geometry: %w", err)
		}
		geoms = append(geoms, sb.Geometry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return geoms, nil
}

func geometryColumns(handle *gpkg.Handle) (map[string]string, error) {
	rows, err := handle.Query(`SELECT table_name, column_name FROM gpkg_geometry_columns;`)
	if err != nil {
		return nil, fmt.Errorf("reading gpkg_geometry_columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]string)
	for rows.Next() {
		var name, gcolumn string
		if err = rows.Scan(&name, &gcolumn); err != nil {
			return nil, err
		}
		columns[name] = gcolumn
	}
	return columns, rows.Err()
}
