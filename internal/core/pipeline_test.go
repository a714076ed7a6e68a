package core

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

func TestLoadColumnMapping(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		wantCode ErrorCode
		want     ColumnMapping
	}{
		{
			name:    "basic with forced year entry",
			content: "nom_original;nouveau_nom;description\nnum_acc;numero_accident;id\nlum;conditions_lumieres;\nannee;year_from_file;\n",
			want: ColumnMapping{
				"num_acc": "numero_accident",
				"lum":     "conditions_lumieres",
				"annee":   "annee_accident",
			},
		},
		{
			name:    "last duplicate wins and empty rows skipped",
			content: "nom_original;nouveau_nom\nlum;first\nlum;second\n;orphan\nagg;\n",
			want:    ColumnMapping{"lum": "second", "annee": "annee_accident"},
		},
		{
			name:    "header matched case-insensitively",
			content: "\ufeff Nom_Original ;NOUVEAU_NOM\ncatr;categorie_route\n",
			want:    ColumnMapping{"catr": "categorie_route", "annee": "annee_accident"},
		},
		{
			name:     "missing file",
			missing:  true,
			wantCode: CodeDictionaryMissing,
		},
		{
			name:     "missing column",
			content:  "nom_original;description\nlum;x\n",
			wantCode: CodeDictionaryMalformed,
		},
		{
			name:     "empty file",
			content:  "",
			wantCode: CodeDictionaryMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "dictionnaire_des_variables.csv")
			if !tt.missing {
				writeFile(t, dir, "dictionnaire_des_variables.csv", tt.content)
			}

			got, err := LoadColumnMapping(path)
			if tt.wantCode != "" {
				if !errors.Is(err, ErrConfiguration) {
					t.Fatalf("error = %v, want ErrConfiguration", err)
				}
				if CodeOf(err) != tt.wantCode {
					t.Errorf("code = %s, want %s", CodeOf(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mapping = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoader_LoadTable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "caract-2021.csv", "Num_Acc;id_vehicule;jour\n2021001;154\u00a0001;1\n")
	writeFile(t, dir, "lieux-2021.csv", "num_acc;catr\n2021001;1;extra\n")
	writeFile(t, dir, "lieux_2021.csv", "num_acc;catr\n2021001;3\n")
	writeFile(t, dir, "usagers-2021.csv", "num_acc;grav\n2021001;\xff\n")

	loader := NewLoader(dir, rawcsv.Options{Delimiter: ';'})
	ctx := context.Background()

	t.Run("first pattern loads", func(t *testing.T) {
		def := TableDefinition{Info: TableInfo{Key: TableCaracteristiques}, Patterns: []string{"caract-{year}.csv"}}
		tbl, err := loader.LoadTable(ctx, 2021, def)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !tbl.Has("num_acc") {
			t.Errorf("names = %v", tbl.Names())
		}
	})

	t.Run("unparsable candidate falls through to next alias", func(t *testing.T) {
		def := TableDefinition{Info: TableInfo{Key: TableLieux}, Patterns: []string{"lieux-{year}.csv", "lieux_{year}.csv"}}
		tbl, err := loader.LoadTable(ctx, 2021, def)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v := cells(t, tbl, "catr"); v[0] != "3" {
			t.Errorf("catr = %v, want the second alias", v)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		def := TableDefinition{Info: TableInfo{Key: TableVehicules}, Patterns: []string{"vehicules-{year}.csv"}}
		_, err := loader.LoadTable(ctx, 2021, def)
		if !errors.Is(err, ErrTableLoad) || CodeOf(err) != CodeTableMissing {
			t.Errorf("error = %v (code %s), want TBL001", err, CodeOf(err))
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		def := TableDefinition{Info: TableInfo{Key: TableUsagers}, Patterns: []string{"usagers-{year}.csv"}}
		_, err := loader.LoadTable(ctx, 2021, def)
		if !errors.Is(err, rawcsv.ErrInvalidUTF8) || CodeOf(err) != CodeTableUnreadable {
			t.Errorf("error = %v (code %s), want TBL002 wrapping invalid UTF-8", err, CodeOf(err))
		}
	})

	t.Run("loading twice gives the same table", func(t *testing.T) {
		def := TableDefinition{Info: TableInfo{Key: TableCaracteristiques}, Patterns: []string{"caract-{year}.csv"}}
		first, err := loader.LoadTable(ctx, 2021, def)
		if err != nil {
			t.Fatalf("first load: %v", err)
		}
		second, err := loader.LoadTable(ctx, 2021, def)
		if err != nil {
			t.Fatalf("second load: %v", err)
		}
		if !reflect.DeepEqual(first.Names(), second.Names()) {
			t.Fatalf("names differ: %v vs %v", first.Names(), second.Names())
		}
		for _, name := range first.Names() {
			a, _ := first.Column(name)
			b, _ := second.Column(name)
			if !reflect.DeepEqual(a, b) {
				t.Errorf("column %s differs: %+v vs %+v", name, a, b)
			}
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := loader.LoadYear(cctx, 2021, testDefs())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestLoader_LoadYear(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "caract-2022.csv", "Num_Acc;jour\n1;1\n")
	writeFile(t, dir, "lieux-2022.csv", "Num_Acc;catr\n1;1\n")

	rec, failures, err := NewLoader(dir, rawcsv.Options{}).LoadYear(context.Background(), 2022, testDefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{TableCaracteristiques, TableLieux}; !reflect.DeepEqual(rec.Keys(), want) {
		t.Errorf("loaded = %v, want %v", rec.Keys(), want)
	}
	var missing []string
	for _, f := range failures {
		missing = append(missing, f.Table)
	}
	if want := []string{TableVehicules, TableUsagers}; !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

// yearRecord builds a normalized record from ';'-separated fixtures.
func yearRecord(t *testing.T, tables map[string][]string) YearRecord {
	t.Helper()
	rec := make(YearRecord, len(tables))
	for key, lines := range tables {
		rec[key] = NormalizeTable(frame.InferKinds(csvTable(t, lines...)))
	}
	return rec
}

func TestMergeYear(t *testing.T) {
	rec := yearRecord(t, map[string][]string{
		TableCaracteristiques: {"Num_Acc;lum", "A1;1", "A2;2"},
		TableLieux:            {"Num_Acc;catr", "A1;3"},
		TableVehicules:        {"Num_Acc;id_vehicule;num_veh;catv", "A1;V1;01;7", "A1;V2;02;33", "A2;V3;01;7"},
		TableUsagers: {"Num_Acc;id_vehicule;num_veh;grav;id_usager",
			"A1;V1;01;1;U1", "A1;V1;01;2;U2", "A1;V2;02;4;U3", "A1;V9;09;3;U4"},
	})

	got, err := MergeYear(rec, 2021, testDefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A1 has vehicles V1 (2 persons) and V2 (1 person); A2's V3 has none.
	if got.NumRows() != 4 {
		t.Fatalf("NumRows() = %d, want 4: %s", got.NumRows(), got)
	}
	if v := cells(t, got, "id_usager"); !reflect.DeepEqual(v, []string{"U1", "U2", "U3", ""}) {
		t.Errorf("id_usager = %v", v)
	}
	if v := cells(t, got, "catr"); !reflect.DeepEqual(v, []string{"3", "3", "3", ""}) {
		t.Errorf("catr = %v, want null for the accident without a location", v)
	}
	if !got.Has("num_veh_usagers") || !got.Has("num_veh") {
		t.Errorf("names = %v, want num_veh and num_veh_usagers", got.Names())
	}
	for _, y := range cells(t, got, ColYear) {
		if y != "2021" {
			t.Fatalf("annee_accident = %q, want 2021", y)
		}
	}
	if c, _ := got.Column(ColYear); c.Kind != frame.KindInt {
		t.Errorf("annee_accident kind = %s, want int", c.Kind)
	}
}

func TestMergeYear_MissingVehicules(t *testing.T) {
	rec := yearRecord(t, map[string][]string{
		TableCaracteristiques: {"Num_Acc;lum", "A1;1"},
		TableLieux:            {"Num_Acc;catr", "A1;3"},
		TableUsagers:          {"Num_Acc;id_vehicule;grav", "A1;V1;1", "A1;V2;4"},
	})

	got, err := MergeYear(rec, 2022, testDefs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want one row per person", got.NumRows())
	}
	if got.Has("catv") {
		t.Error("vehicle columns should be absent")
	}
	if v := cells(t, got, ColVehicle); !reflect.DeepEqual(v, []string{"V1", "V2"}) {
		t.Errorf("id_vehicule = %v", v)
	}
}

func TestMergeYear_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tables   map[string][]string
		wantCode ErrorCode
	}{
		{
			name:     "missing caracteristiques",
			tables:   map[string][]string{TableLieux: {"Num_Acc;catr", "A1;3"}},
			wantCode: CodeRequiredTableMissing,
		},
		{
			name:     "missing lieux",
			tables:   map[string][]string{TableCaracteristiques: {"Num_Acc;lum", "A1;1"}},
			wantCode: CodeRequiredTableMissing,
		},
		{
			name: "join key missing on the right",
			tables: map[string][]string{
				TableCaracteristiques: {"Num_Acc;lum", "A1;1"},
				TableLieux:            {"other;catr", "A1;3"},
			},
			wantCode: CodeJoinFailed,
		},
		{
			name: "vehicules without id_vehicule",
			tables: map[string][]string{
				TableCaracteristiques: {"Num_Acc;lum", "A1;1"},
				TableLieux:            {"Num_Acc;catr", "A1;3"},
				TableVehicules:        {"Num_Acc;num_veh;catv", "A1;A01;7", "A1;B01;33"},
				TableUsagers:          {"Num_Acc;id_vehicule;grav", "A1;V1;1", "A1;V2;4"},
			},
			wantCode: CodeJoinFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MergeYear(yearRecord(t, tt.tables), 2021, testDefs())
			if !errors.Is(err, ErrYearMerge) {
				t.Fatalf("error = %v, want ErrYearMerge", err)
			}
			if CodeOf(err) != tt.wantCode {
				t.Errorf("code = %s, want %s", CodeOf(err), tt.wantCode)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	y2021 := csvTable(t, "num_acc;catv", "A1;7")
	y2022 := csvTable(t, "num_acc;grav", "B1;1", "B2;2")

	got := Combine(map[int]*frame.Table{2022: y2022, 2021: y2021})
	if got.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", got.NumRows())
	}
	if v := cells(t, got, "num_acc"); !reflect.DeepEqual(v, []string{"A1", "B1", "B2"}) {
		t.Errorf("num_acc = %v, want years in ascending order", v)
	}
	if v := cells(t, got, "catv"); !reflect.DeepEqual(v, []string{"7", "", ""}) {
		t.Errorf("catv = %v", v)
	}

	if empty := Combine(nil); empty.NumRows() != 0 || empty.NumCols() != 0 {
		t.Errorf("Combine(nil) = %s, want empty", empty)
	}
}

func TestFinalize(t *testing.T) {
	tbl := csvTable(t,
		"num_acc;num_veh_x;num_veh_y;catv_vehicules;place_usagers;lum;annee",
		"A1;01;02;x;y;1;2021",
	)
	mapping := ColumnMapping{"num_acc": "numero_accident", "lum": "conditions_lumieres", "annee": "annee_accident", "absent": "nowhere"}

	got, res := Finalize(tbl, mapping)

	want := []string{"numero_accident", "num_veh", "num_veh_y", "conditions_lumieres", "annee_accident"}
	if !reflect.DeepEqual(got.Names(), want) {
		t.Fatalf("names = %v, want %v", got.Names(), want)
	}
	if v := cells(t, got, "num_veh"); v[0] != "01" {
		t.Errorf("num_veh = %v, want left-side value", v)
	}
	sort.Strings(res.Dropped)
	if !reflect.DeepEqual(res.Dropped, []string{"catv_vehicules", "place_usagers"}) {
		t.Errorf("dropped = %v", res.Dropped)
	}
	if res.NumVehFrom != "num_veh_x" {
		t.Errorf("NumVehFrom = %q", res.NumVehFrom)
	}
	if len(res.Renamed) != 3 {
		t.Errorf("renamed = %v, want 3 entries", res.Renamed)
	}
}

func TestFinalize_KeepsExistingNumVeh(t *testing.T) {
	tbl := csvTable(t, "num_veh;num_veh_x", "01;02")
	got, res := Finalize(tbl, ColumnMapping{})
	if !reflect.DeepEqual(got.Names(), []string{"num_veh", "num_veh_x"}) {
		t.Errorf("names = %v", got.Names())
	}
	if res.NumVehFrom != "" {
		t.Errorf("NumVehFrom = %q, want empty", res.NumVehFrom)
	}
}

func TestFinalize_RenameCollisionCoalesces(t *testing.T) {
	tbl := csvTable(t, "annee;annee_accident", "2020;", ";2021")
	got, res := Finalize(tbl, ColumnMapping{"annee": "annee_accident"})

	if !reflect.DeepEqual(got.Names(), []string{"annee_accident"}) {
		t.Fatalf("names = %v", got.Names())
	}
	if v := cells(t, got, "annee_accident"); !reflect.DeepEqual(v, []string{"2020", "2021"}) {
		t.Errorf("annee_accident = %v", v)
	}
	if src := res.Coalesced["annee_accident"]; len(src) != 2 {
		t.Errorf("coalesced = %v", res.Coalesced)
	}
}
