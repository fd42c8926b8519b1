package dataset

import (
	"encoding/json"

	"github.com/apache/arrow/go/v11/parquet/metadata"
	"github.com/cockroachdb/errors"
)

// pandasMetadataKey is the file key-value entry pandas writes its
// DataFrame layout under.
const pandasMetadataKey = "pandas"

type pandasMetadata struct {
	IndexColumns []json.RawMessage `json:"index_columns"`
}

// pandasIndexColumns returns the stored index columns named in the pandas
// metadata of kv. Such columns become the DataFrame index and are not part
// of its shape. Range indexes are described inline and have no column.
func pandasIndexColumns(kv metadata.KeyValueMetadata) (map[string]bool, error) {
	doc := kv.FindValue(pandasMetadataKey)
	if doc == nil {
		return nil, nil
	}

	var md pandasMetadata
	if err := json.Unmarshal([]byte(*doc), &md); err != nil {
		return nil, errors.Wrap(err, "decode pandas metadata")
	}

	index := make(map[string]bool, len(md.IndexColumns))
	for _, raw := range md.IndexColumns {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			index[name] = true
		}
	}
	return index, nil
}
