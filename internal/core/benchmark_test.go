package core

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

// ============================================================================
// Loading Benchmarks
// ============================================================================

// BenchmarkReadAndNormalize benchmarks the per-table load path: parse, infer
// kinds and normalize.
func BenchmarkReadAndNormalize(b *testing.B) {
	data := generateUsagersCSV(10000)

	b.ResetTimer()
	b.SetBytes(int64(len(data)))
	for i := 0; i < b.N; i++ {
		raw, _, err := rawcsv.Read(bytes.NewReader(data), rawcsv.Options{Delimiter: ';'})
		if err != nil {
			b.Fatal(err)
		}
		NormalizeTable(frame.InferKinds(raw))
	}
}

// BenchmarkNormalizeTable benchmarks normalization alone on a loaded table.
func BenchmarkNormalizeTable(b *testing.B) {
	raw := benchTable(b, generateUsagersCSV(10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeTable(raw)
	}
}

// ============================================================================
// Assembly Benchmarks
// ============================================================================

// BenchmarkMergeYear benchmarks the four-table join of one year.
func BenchmarkMergeYear(b *testing.B) {
	const accidents = 5000
	rec := YearRecord{
		TableCaracteristiques: NormalizeTable(benchTable(b, generateCaractCSV(accidents))),
		TableLieux:            NormalizeTable(benchTable(b, generateLieuxCSV(accidents))),
		TableVehicules:        NormalizeTable(benchTable(b, generateVehiculesCSV(accidents))),
		TableUsagers:          NormalizeTable(benchTable(b, generateUsagersCSV(accidents))),
	}
	defs := testDefs()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MergeYear(rec, 2021, defs); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFinalize benchmarks collision cleanup and dictionary renaming.
func BenchmarkFinalize(b *testing.B) {
	rec := YearRecord{
		TableCaracteristiques: NormalizeTable(benchTable(b, generateCaractCSV(2000))),
		TableLieux:            NormalizeTable(benchTable(b, generateLieuxCSV(2000))),
		TableVehicules:        NormalizeTable(benchTable(b, generateVehiculesCSV(2000))),
		TableUsagers:          NormalizeTable(benchTable(b, generateUsagersCSV(2000))),
	}
	merged, err := MergeYear(rec, 2021, testDefs())
	if err != nil {
		b.Fatal(err)
	}
	mapping := ColumnMapping{"lum": "conditions_lumieres", "grav": "gravite", "catv": "categorie_vehicule", "annee": "annee_accident"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Finalize(merged, mapping)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func benchTable(b *testing.B, data []byte) *frame.Table {
	b.Helper()
	t, _, err := rawcsv.Read(bytes.NewReader(data), rawcsv.Options{Delimiter: ';'})
	if err != nil {
		b.Fatal(err)
	}
	return frame.InferKinds(t)
}

// generateCaractCSV creates one caracteristiques row per accident.
func generateCaractCSV(accidents int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Num_Acc;jour;mois;an;lum;dep\n")
	for i := 0; i < accidents; i++ {
		fmt.Fprintf(&buf, "2021%08d;%d;%d;2021;%d;%d\n", i, i%28+1, i%12+1, i%5+1, i%95+1)
	}
	return buf.Bytes()
}

// generateLieuxCSV creates one lieux row per accident.
func generateLieuxCSV(accidents int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Num_Acc;catr;nbv;pr;pr1\n")
	for i := 0; i < accidents; i++ {
		fmt.Fprintf(&buf, "2021%08d;%d;%d;%d\u00a0%03d;(1)\n", i, i%7+1, i%4+1, i%9, i%1000)
	}
	return buf.Bytes()
}

// generateVehiculesCSV creates two vehicles per accident.
func generateVehiculesCSV(accidents int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Num_Acc;id_vehicule;num_veh;catv\n")
	for i := 0; i < accidents; i++ {
		for v := 0; v < 2; v++ {
			fmt.Fprintf(&buf, "2021%08d;%d\u00a0%03d;%c01;%d\n", i, i/1000+100, (2*i+v)%1000, 'A'+v, (i+v)%50)
		}
	}
	return buf.Bytes()
}

// generateUsagersCSV creates three persons per accident over its two vehicles.
func generateUsagersCSV(accidents int) []byte {
	var buf bytes.Buffer
	buf.WriteString("Num_Acc;id_usager;id_vehicule;num_veh;place;grav\n")
	for i := 0; i < accidents; i++ {
		for p := 0; p < 3; p++ {
			v := p % 2
			fmt.Fprintf(&buf, "2021%08d;%d\u00a0%03d;%d\u00a0%03d;%c01;%d;%d\n",
				i, i/1000+200, (3*i+p)%1000, i/1000+100, (2*i+v)%1000, 'A'+v, p+1, p%4+1)
		}
	}
	return buf.Bytes()
}
