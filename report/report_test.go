package report

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var partColumns = []string{"repuesto_id", "codigo", "descripcion", "marca", "proveedor", "precio_actual"}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func expectReports() {
	mock.ExpectQuery(`UPPER\(p.nombre\) = 'AUTOFIX'`).
		WillReturnRows(sqlmock.NewRows(append(partColumns, "fecha_ultima_actualizacion")).
			AddRow(7, "AF-1", "Filtro", "BOSCH", "AUTOFIX", 1500.5, nil))
	mock.ExpectQuery(`'ELEXA', 'BERU'`).
		WillReturnRows(sqlmock.NewRows(append(partColumns, "precio_propuesto_15")).
			AddRow(3, "EL-1", "Lámpara", "ELEXA", "AUTOMAX", 100, 115).
			AddRow(4, "RN-1", "Bujía", "RN", nil, 200, 230))
	mock.ExpectQuery(`r.precio > 50000 AND r.precio < 100000`).
		WillReturnRows(sqlmock.NewRows(append(partColumns, "precio_con_recargo_30")))
	mock.ExpectQuery(`sin_descripcion`).
		WillReturnRows(sqlmock.NewRows([]string{"proveedor_id", "proveedor", "total_repuestos", "sin_descripcion",
			"repuesto_id_mas_caro", "codigo_mas_caro", "descripcion_mas_caro", "precio_mas_caro"}).
			AddRow(1, "AUTOFIX", 120, 3, 7, "AF-1", "Filtro", 1500.5))
	mock.ExpectQuery(`AVG\(r.precio\)`).
		WillReturnRows(sqlmock.NewRows([]string{"proveedor_id", "proveedor", "marca_id", "marca", "precio_promedio"}).
			AddRow(1, "AUTOFIX", 9, "BOSCH", 812.25))
}

func TestGenerate(t *testing.T) {
	it(func() {
		outdir := filepath.Join(t.TempDir(), "reports")
		expectReports()

		written, err := Generate(context.Background(), db, outdir, logrus.New())

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
		require.Len(t, written, 4)

		assert.Equal(t, filepath.Join(outdir, "autofix_no_actualizados_ultimo_mes.csv"), written[0].Path)
		assert.Equal(t, 1, written[0].Rows)
		assert.Equal(t, filepath.Join(outdir, "precio_propuesto_15_marcas_seleccionadas.csv"), written[1].Path)
		assert.Equal(t, filepath.Join(outdir, "recargo_30_autorepuestos_automax_50k_100k.csv"), written[2].Path)
		assert.Equal(t, 0, written[2].Rows)
		assert.Equal(t, filepath.Join(outdir, "resumen_proveedor.csv"), written[3].Path)
		assert.Equal(t, 2, written[3].Rows)

		stale := readCSV(t, written[0].Path)
		assert.Equal(t, []string{"7", "AF-1", "Filtro", "BOSCH", "AUTOFIX", "1500.5", ""}, stale[1])

		increase := readCSV(t, written[1].Path)
		assert.Equal(t, []string{"4", "RN-1", "Bujía", "RN", "", "200", "230"}, increase[2])

		assert.Equal(t, [][]string{append(partColumns, "precio_con_recargo_30")}, readCSV(t, written[2].Path))

		summary := readCSV(t, written[3].Path)
		assert.Equal(t, summaryColumns, summary[0])
		assert.Equal(t, []string{"resumen_proveedor", "1", "AUTOFIX", "120", "3", "7", "AF-1", "Filtro", "1500.5", "", "", ""}, summary[1])
		assert.Equal(t, []string{"promedio_por_marca_en_proveedor", "1", "AUTOFIX", "", "", "", "", "", "", "9", "BOSCH", "812.25"}, summary[2])
	})
}

func TestGenerate_QueryError(t *testing.T) {
	it(func() {
		mock.ExpectQuery(`'AUTOFIX'`).WillReturnError(errors.New("table Repuesto doesn't exist"))

		written, err := Generate(context.Background(), db, t.TempDir(), logrus.New())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "autofix_no_actualizados_ultimo_mes")
		assert.Empty(t, written)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCombine_ExtraColumnsIgnored(t *testing.T) {
	res := Combine([]string{"seccion", "a", "b"},
		Section{Name: "uno", Result: Result{
			Columns: []string{"b", "z"},
			Rows:    [][]sql.NullString{{{String: "B", Valid: true}, {String: "Z", Valid: true}}},
		}},
	)

	require.Len(t, res.Rows, 1)
	assert.Equal(t, []sql.NullString{{String: "uno", Valid: true}, {}, {String: "B", Valid: true}}, res.Rows[0])
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db.local", Port: 3307, User: "etl", Password: "s3cr3t", Database: "boxer"}

	dsn := c.DSN()

	assert.Contains(t, dsn, "etl:s3cr3t@tcp(db.local:3307)/boxer")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDBConfigFromEnv(t *testing.T) {
	t.Setenv("MYSQL_HOST", "mysql")
	t.Setenv("MYSQL_PORT", "not-a-port")
	t.Setenv("MYSQL_DB", "")

	c := DBConfigFromEnv()

	assert.Equal(t, "mysql", c.Host)
	assert.Equal(t, 3306, c.Port)
	assert.Equal(t, "boxer", c.Database)
}
