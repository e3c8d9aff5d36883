package tracking

const (
	createRunsTable = `CREATE TABLE IF NOT EXISTS scrape_runs (
						id UUID PRIMARY KEY,
						region TEXT NOT NULL,
						total_queries INT NOT NULL,
						started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						finished_at TIMESTAMPTZ,
						total_requests BIGINT,
						handled_requests BIGINT,
						failed_requests BIGINT,
						records_emitted BIGINT
					)`
	insertRun = `INSERT INTO scrape_runs (id, region, total_queries)
					VALUES ($1, $2, $3)`
	finishRun = `UPDATE scrape_runs SET
					finished_at = NOW(),
					total_requests = $2,
					handled_requests = $3,
					failed_requests = $4,
					records_emitted = $5
				WHERE id = $1`
	getRun = `SELECT id, region, total_queries, total_requests, handled_requests, failed_requests, records_emitted
				FROM scrape_runs WHERE id = $1`
)
