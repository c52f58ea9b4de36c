package report

// Query is one fixed report over the parts catalogue
type Query struct {
	Name string
	SQL  string
}

// AutoFix parts whose price was not updated during the last month
var staleAutoFix = Query{
	Name: "autofix_no_actualizados_ultimo_mes",
	SQL: `SELECT
  r.id          AS repuesto_id,
  r.codigo      AS codigo,
  r.descripcion AS descripcion,
  m.nombre      AS marca,
  p.nombre      AS proveedor,
  r.precio      AS precio_actual,
  a.fecha       AS fecha_ultima_actualizacion
FROM Repuesto r
JOIN Proveedor p          ON p.id = r.proveedor_id
LEFT JOIN Marca m         ON m.id = r.id_marca
LEFT JOIN Actualizacion a ON a.id = r.id_ultima_actualizacion
WHERE UPPER(p.nombre) = 'AUTOFIX'
  AND (a.fecha IS NULL OR DATE(a.fecha) < DATE_SUB(CURDATE(), INTERVAL 1 MONTH))
ORDER BY r.precio DESC, r.id ASC`,
}

// +15% proposal for a fixed set of brands
var selectedBrandsIncrease = Query{
	Name: "precio_propuesto_15_marcas_seleccionadas",
	SQL: `SELECT
  r.id                      AS repuesto_id,
  r.codigo                  AS codigo,
  r.descripcion             AS descripcion,
  m.nombre                  AS marca,
  p.nombre                  AS proveedor,
  r.precio                  AS precio_actual,
  ROUND(r.precio * 1.15, 2) AS precio_propuesto_15
FROM Repuesto r
JOIN Marca m          ON m.id = r.id_marca
LEFT JOIN Proveedor p ON p.id = r.proveedor_id
WHERE UPPER(m.nombre) IN ('ELEXA', 'BERU', 'SH', 'MASTERFILT', 'RN')
ORDER BY m.nombre, r.codigo`,
}

// +30% surcharge for two suppliers inside the 50k-100k price band
var surchargeBand = Query{
	Name: "recargo_30_autorepuestos_automax_50k_100k",
	SQL: `SELECT
  r.id                      AS repuesto_id,
  r.codigo                  AS codigo,
  r.descripcion             AS descripcion,
  m.nombre                  AS marca,
  p.nombre                  AS proveedor,
  r.precio                  AS precio_actual,
  ROUND(r.precio * 1.30, 2) AS precio_con_recargo_30
FROM Repuesto r
JOIN Proveedor p  ON p.id = r.proveedor_id
LEFT JOIN Marca m ON m.id = r.id_marca
WHERE UPPER(p.nombre) IN ('AUTOREPUESTOS EXPRESS', 'AUTOMAX')
  AND r.precio > 50000 AND r.precio < 100000
ORDER BY p.nombre, r.precio DESC`,
}

// per-supplier totals joined with the most expensive part
var supplierSummary = Query{
	Name: "resumen_proveedor",
	SQL: `SELECT
  t.proveedor_id,
  t.proveedor,
  t.total_repuestos,
  t.sin_descripcion,
  r.id          AS repuesto_id_mas_caro,
  r.codigo      AS codigo_mas_caro,
  r.descripcion AS descripcion_mas_caro,
  r.precio      AS precio_mas_caro
FROM (
  SELECT
    p.id     AS proveedor_id,
    p.nombre AS proveedor,
    COUNT(*) AS total_repuestos,
    SUM(CASE WHEN r.descripcion IS NULL OR TRIM(r.descripcion) = '' THEN 1 ELSE 0 END) AS sin_descripcion,
    MAX(r.precio) AS precio_mas_caro
  FROM Repuesto r
  JOIN Proveedor p ON p.id = r.proveedor_id
  GROUP BY p.id, p.nombre
) t
JOIN Repuesto r
  ON r.proveedor_id = t.proveedor_id AND r.precio = t.precio_mas_caro
ORDER BY t.proveedor`,
}

var brandAverages = Query{
	Name: "promedio_por_marca_en_proveedor",
	SQL: `SELECT
  p.id     AS proveedor_id,
  p.nombre AS proveedor,
  m.id     AS marca_id,
  m.nombre AS marca,
  ROUND(AVG(r.precio), 2) AS precio_promedio
FROM Repuesto r
JOIN Proveedor p ON p.id = r.proveedor_id
JOIN Marca m     ON m.id = r.id_marca
GROUP BY p.id, p.nombre, m.id, m.nombre
ORDER BY p.nombre, m.nombre`,
}

// summaryColumns is the shared layout of the combined supplier summary file
var summaryColumns = []string{
	"seccion",
	"proveedor_id", "proveedor",
	"total_repuestos", "sin_descripcion",
	"repuesto_id_mas_caro", "codigo_mas_caro", "descripcion_mas_caro", "precio_mas_caro",
	"marca_id", "marca", "precio_promedio",
}
