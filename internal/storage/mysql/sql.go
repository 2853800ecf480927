package mysql

const insertRunSQL = `
INSERT INTO scrape_runs
  (id, started_at, finished_at, targets, records, mock_records, output_path)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  finished_at  = VALUES(finished_at),
  records      = VALUES(records),
  mock_records = VALUES(mock_records),
  output_path  = VALUES(output_path)
`

const insertProductsPrefix = "INSERT INTO scraped_products\n  (run_id, seq, origin, latitude, longitude, category, subcategory, product_id, product_name, brand, price, attributes)\nVALUES "

// Re-archiving a run replaces its rows one for one.
const insertProductsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  origin       = VALUES(origin),\n" +
	"  product_id   = VALUES(product_id),\n" +
	"  product_name = VALUES(product_name),\n" +
	"  brand        = VALUES(brand),\n" +
	"  price        = VALUES(price),\n" +
	"  attributes   = VALUES(attributes)\n"

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const runColumns = `id, started_at, finished_at, targets, records, mock_records, output_path`

const getRunSQL = `SELECT ` + runColumns + ` FROM scrape_runs WHERE id = ?`

const listRunsSQL = `SELECT ` + runColumns + ` FROM scrape_runs ORDER BY started_at DESC, id LIMIT ?`

// listProductsSQL is completed by the repo with optional filters and the page bound.
const listProductsSQL = `
SELECT
  run_id, seq, origin, latitude, longitude, category, subcategory,
  product_id, product_name, brand, price, attributes
FROM scraped_products
WHERE run_id = ? AND seq > ?`
