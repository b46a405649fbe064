package export

import (
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/parquet/compress"
)

type ParquetCodec struct {
	Name string
	Code compress.Compression
}

var parquetCodecs = []ParquetCodec{
	{Name: "none", Code: compress.Codecs.Uncompressed},
	{Name: "snappy", Code: compress.Codecs.Snappy},
	{Name: "gzip", Code: compress.Codecs.Gzip},
	{Name: "zstd", Code: compress.Codecs.Zstd},
	{Name: "brotli", Code: compress.Codecs.Brotli},
}

func ParseParquetCodec(s string) (ParquetCodec, error) {
	for _, codec := range parquetCodecs {
		if codec.Name == s {
			return codec, nil
		}
	}
	return ParquetCodec{}, fmt.Errorf("invalid parquet compression: %s", s)
}

func (c ParquetCodec) String() string {
	if c.Name == "" {
		return "UNKNOWN"
	}
	return c.Name
}

// Level only applies to codecs with tunable compression.
func (c ParquetCodec) supportsLevel() bool {
	switch c.Code {
	case compress.Codecs.Gzip, compress.Codecs.Zstd, compress.Codecs.Brotli:
		return true
	}
	return false
}

func (c ParquetCodec) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ParquetCodec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	codec, err := ParseParquetCodec(s)
	if err != nil {
		return err
	}
	*c = codec
	return nil
}
