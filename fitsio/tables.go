package fitsio

import (
	"time"

	gofits "github.com/astrogo/fits"

	"github.com/melix/astro4j-sub008/apperrors"
	"github.com/melix/astro4j-sub008/image"
)

// encodeMetadataTables builds one binary-table HDU for each of these
// metadata-bag entries that is present: Ellipse, Redshifts, ReferenceCoords,
// TransformationHistory, SourceInfo and MetadataTable. The opaque payloads
// (DistorsionMap/ProcessParams/SolarParameters) and PixelShift get no table
// and are not written; dispersionNmPerPx is not used.
func encodeMetadataTables(bag *image.Bag, dispersionNmPerPx float64) ([]gofits.HDU, error) {
	var hdus []gofits.HDU

	if v, ok := bag.Get(image.KindEllipse); ok {
		e := v.(*image.Ellipse)
		hdu, err := newTable(TagEllipse, []gofits.Column{
			{Name: "A", Format: "D"}, {Name: "B", Format: "D"}, {Name: "C", Format: "D"},
			{Name: "D", Format: "D"}, {Name: "E", Format: "D"}, {Name: "F", Format: "D"},
		}, [][]float64{{e.A, e.B, e.C, e.D, e.E, e.F}})
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	if v, ok := bag.Get(image.KindRedshifts); ok {
		areas := v.(image.Redshifts)
		rows := make([][]float64, len(areas))
		for i, a := range areas {
			rows[i] = []float64{a.PixelShift, a.RelShift, a.KmPerSec, a.X1, a.Y1, a.X2, a.Y2, a.MaxX, a.MaxY}
		}
		hdu, err := newTable(TagRedshifts, []gofits.Column{
			{Name: "PIXELSHIFT", Format: "D"}, {Name: "RELSHIFT", Format: "D"}, {Name: "KMPERSEC", Format: "D"},
			{Name: "X1", Format: "D"}, {Name: "Y1", Format: "D"}, {Name: "X2", Format: "D"}, {Name: "Y2", Format: "D"},
			{Name: "MAXX", Format: "D"}, {Name: "MAXY", Format: "D"},
		}, rows)
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	if v, ok := bag.Get(image.KindReferenceCoords); ok {
		ops := v.(image.ReferenceCoords)
		rows := make([][]string, len(ops))
		for i, op := range ops {
			rows[i] = []string{op.Kind}
		}
		hdu, err := newStringTable(TagRefCoords, []gofits.Column{{Name: "KIND", Format: "20A"}, {Name: "VALUE", Format: "D"}}, rows, opsValues(ops))
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	if v, ok := bag.Get(image.KindTransformationHistory); ok {
		names := v.(image.TransformationHistory)
		rows := make([][]string, len(names))
		for i, n := range names {
			rows[i] = []string{NormalizeHeaderString(n)}
		}
		hdu, err := newStringTable(TagTransforms, []gofits.Column{{Name: "NAME", Format: "64A"}}, rows, nil)
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	if v, ok := bag.Get(image.KindSourceInfo); ok {
		si := v.(image.SourceInfo)
		hdu, err := newStringTable(TagSourceInfo, []gofits.Column{
			{Name: "SERFILE", Format: "64A"}, {Name: "PARENTDIR", Format: "128A"}, {Name: "DATETIME", Format: "32A"},
		}, [][]string{{
			NormalizeHeaderString(si.SerFileName),
			NormalizeHeaderString(si.ParentDir),
			si.DateTime.UTC().Format("2006-01-02T15:04:05"),
		}}, nil)
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	if v, ok := bag.Get(image.KindMetadataTable); ok {
		table := v.(image.MetadataTable)
		rows := make([][]string, 0, len(table))
		for k, val := range table {
			rows = append(rows, []string{NormalizeHeaderString(k), NormalizeHeaderString(val)})
		}
		hdu, err := newStringTable(TagTMetadata, []gofits.Column{{Name: "KEY", Format: "64A"}, {Name: "VALUE", Format: "256A"}}, rows, nil)
		if err != nil {
			return nil, err
		}
		hdus = append(hdus, hdu)
	}

	return hdus, nil
}

func opsValues(ops image.ReferenceCoords) []float64 {
	out := make([]float64, len(ops))
	for i, op := range ops {
		out[i] = op.Value
	}
	return out
}

func newTable(tag Tag, cols []gofits.Column, rows [][]float64) (gofits.HDU, error) {
	tbl, err := gofits.NewTable(string(tag), cols, len(rows), gofits.BINARY_TBL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
	}
	hdr := tbl.Header()
	if err := hdr.Set("JSOLEX", string(tag), "jsol'ex metadata tag"); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
	}
	for _, row := range rows {
		vals := make([]interface{}, len(row))
		for i, v := range row {
			vals[i] = v
		}
		if err := tbl.Write(vals); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
	}
	return tbl, nil
}

func newStringTable(tag Tag, cols []gofits.Column, rows [][]string, trailingValues []float64) (gofits.HDU, error) {
	tbl, err := gofits.NewTable(string(tag), cols, len(rows), gofits.BINARY_TBL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
	}
	hdr := tbl.Header()
	if err := hdr.Set("JSOLEX", string(tag), "jsol'ex metadata tag"); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
	}
	for i, row := range rows {
		vals := make([]interface{}, 0, len(row)+1)
		for _, s := range row {
			vals = append(vals, s)
		}
		if trailingValues != nil && i < len(trailingValues) {
			vals = append(vals, trailingValues[i])
		}
		if err := tbl.Write(vals); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
	}
	return tbl, nil
}

// decodeMetadataTables rebuilds a metadata bag from the binary-table HDUs
// tagged with JSOLEX cards.
func decodeMetadataTables(hdus []gofits.HDU) (*image.Bag, error) {
	bag := image.NewBag()
	for _, hdu := range hdus {
		card := hdu.Header().Get("JSOLEX")
		if card == nil {
			continue
		}
		tag, ok := card.Value.(string)
		if !ok {
			continue
		}
		tbl, ok := hdu.(*gofits.Table)
		if !ok {
			continue
		}
		if err := decodeOneTable(bag, Tag(tag), tbl); err != nil {
			return nil, err
		}
	}
	return bag, nil
}

func decodeOneTable(bag *image.Bag, tag Tag, tbl *gofits.Table) error {
	switch tag {
	case TagEllipse:
		var row [6]float64
		if err := tbl.Read(&row); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		bag.Set(image.KindEllipse, &image.Ellipse{A: row[0], B: row[1], C: row[2], D: row[3], E: row[4], F: row[5]})
	case TagTransforms:
		var rows []struct{ Name string }
		if err := tbl.Read(&rows); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		hist := make(image.TransformationHistory, len(rows))
		for i, r := range rows {
			hist[i] = r.Name
		}
		bag.Set(image.KindTransformationHistory, hist)
	case TagRefCoords:
		var rows []struct {
			Kind  string
			Value float64
		}
		if err := tbl.Read(&rows); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		ops := make(image.ReferenceCoords, len(rows))
		for i, r := range rows {
			ops[i] = image.ReferenceCoordOp{Kind: r.Kind, Value: r.Value}
		}
		bag.Set(image.KindReferenceCoords, ops)
	case TagRedshifts:
		var rows []struct {
			PixelShift, RelShift, KmPerSec float64
			X1, Y1, X2, Y2                 float64
			MaxX, MaxY                     float64
		}
		if err := tbl.Read(&rows); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		areas := make(image.Redshifts, len(rows))
		for i, r := range rows {
			areas[i] = image.RedshiftArea{
				PixelShift: r.PixelShift, RelShift: r.RelShift, KmPerSec: r.KmPerSec,
				X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, MaxX: r.MaxX, MaxY: r.MaxY,
			}
		}
		bag.Set(image.KindRedshifts, areas)
	case TagSourceInfo:
		var rows []struct {
			SerFile, ParentDir, DateTime string
		}
		if err := tbl.Read(&rows); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		if len(rows) == 0 {
			return nil
		}
		r := rows[0]
		t, err := time.Parse("2006-01-02T15:04:05", r.DateTime)
		if err != nil {
			t = time.Time{}
		}
		bag.Set(image.KindSourceInfo, image.SourceInfo{
			SerFileName: r.SerFile, ParentDir: r.ParentDir, DateTime: t,
		})
	case TagTMetadata:
		var rows []struct{ Key, Value string }
		if err := tbl.Read(&rows); err != nil {
			return apperrors.Wrap(apperrors.CategoryIO, "fitsio.table", err)
		}
		table := make(image.MetadataTable, len(rows))
		for _, r := range rows {
			table[r.Key] = r.Value
		}
		bag.Set(image.KindMetadataTable, table)
	}
	return nil
}
