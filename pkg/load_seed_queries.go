package pkg

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// LoadSeedQueries reads seed queries from a CSV file with a "Query" column.
// A query can be a search keyword, a product or category URL, a bare product
// id, or an "<id>/reviews" reference.
func LoadSeedQueries(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %v", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %v", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("seed file is empty")
	}
	var queryIDX = -1
	header := records[0]
	for i, col := range header {
		if col == "Query" {
			queryIDX = i
			break
		}
	}
	if queryIDX == -1 {
		return nil, fmt.Errorf("failed to find the query col in seed file")
	}
	var queries []string
	for _, row := range records[1:] {
		if len(row) > queryIDX && strings.TrimSpace(row[queryIDX]) != "" {
			queries = append(queries, strings.TrimSpace(row[queryIDX]))
		}
	}
	return queries, nil
}
