package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSheetName(t *testing.T) {
	assert.Equal(t, "SQL01|INST", SheetName(`SQL01\INST`))
	assert.Equal(t, "a_b", SheetName("a/b"))
	assert.Len(t, SheetName("a-very-long-server-name-that-exceeds-excel"), 31)
}

func TestModel_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xlsx")

	m := &Model{}
	m.AddDataModel(`SQL01\INST`, Sheet{
		Name:    SheetName(`SQL01\INST`),
		Columns: []string{ColDataClassPath, ColDataElementName, "database.mssql.columninfo.ordinal_position"},
		Rows: [][]any{
			{"Sales | dbo | Orders", "", ""},
			{"Sales | dbo | Orders", "Id", 1},
		},
	})
	require.NoError(t, m.Write(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{DataModelsSheet, EnumerationsSheet, "SQL01|INST"}, f.GetSheetList())

	header, rows, err := ReadTable(path, DataModelsSheet)
	require.NoError(t, err)
	assert.Equal(t, dataModelColumns, header)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{`SQL01\INST`, "", "", "", "SQL01|INST", DataAssetType}, rows[0])

	header, rows, err = ReadTable(path, EnumerationsSheet)
	require.NoError(t, err)
	assert.Equal(t, enumerationColumns, header)
	assert.Empty(t, rows)

	_, rows, err = ReadTable(path, "SQL01|INST")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Sales | dbo | Orders", "Id", "1"}, rows[1])
}

func TestModel_AddDataModelKeepsSheetsDistinct(t *testing.T) {
	long := "a-very-long-server-name-that-exceeds-excel"
	tests := []struct {
		name    string
		servers []string
		want    []string
	}{
		{"sanitised collision", []string{`a\b`, "a|b"}, []string{"a|b", "a|b_2"}},
		{"fixed sheet name", []string{"DataModels", "enumerations"}, []string{"DataModels_2", "enumerations_2"}},
		{"case-insensitive", []string{"SQL01", "sql01", "Sql01"}, []string{"SQL01", "sql01_2", "Sql01_3"}},
		{"truncated collision", []string{long, long + "-2"}, []string{long[:31], long[:29] + "_2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Model{}
			for _, server := range tt.servers {
				m.AddDataModel(server, Sheet{Name: SheetName(server), Columns: []string{ColDataClassPath}})
			}
			var keys []string
			for i, dm := range m.DataModels {
				assert.Equal(t, dm.SheetKey, m.Sheets[i].Name)
				keys = append(keys, dm.SheetKey)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestModel_WriteCollidingServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xlsx")

	m := &Model{}
	for _, server := range []string{`a\b`, "a|b", "DataModels"} {
		m.AddDataModel(server, Sheet{
			Name:    SheetName(server),
			Columns: []string{ColDataClassPath},
			Rows:    [][]any{{server}},
		})
	}
	require.NoError(t, m.Write(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{DataModelsSheet, EnumerationsSheet, "a|b", "a|b_2", "DataModels_2"}, f.GetSheetList())

	header, rows, err := ReadTable(path, DataModelsSheet)
	require.NoError(t, err)
	assert.Equal(t, dataModelColumns, header)
	require.Len(t, rows, 3)

	_, rows, err = ReadTable(path, "a|b_2")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a|b"}}, rows)
}

func TestReadTable_MissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.xlsx")
	require.NoError(t, (&Model{}).Write(path))

	_, _, err := ReadTable(path, "Nope")
	assert.Error(t, err)
}
