package compress_test

import (
	"bytes"
	"testing"

	"github.com/mabel-dev/rugo/compress"
	"github.com/mabel-dev/rugo/compress/brotli"
	"github.com/mabel-dev/rugo/compress/gzip"
	"github.com/mabel-dev/rugo/compress/lz4"
	"github.com/mabel-dev/rugo/compress/snappy"
	"github.com/mabel-dev/rugo/compress/uncompressed"
	"github.com/mabel-dev/rugo/compress/zstd"
	"github.com/mabel-dev/rugo/format"
)

func TestCompressionCodecs(t *testing.T) {
	tests := []struct {
		scenario string
		codec    compress.Codec
	}{
		{
			scenario: "uncompressed",
			codec:    new(uncompressed.Codec),
		},

		{
			scenario: "snappy",
			codec:    new(snappy.Codec),
		},

		{
			scenario: "gzip",
			codec:    new(gzip.Codec),
		},

		{
			scenario: "brotli",
			codec:    new(brotli.Codec),
		},

		{
			scenario: "zstd",
			codec:    new(zstd.Codec),
		},

		{
			scenario: "lz4-raw",
			codec:    new(lz4.Codec),
		},

		{
			scenario: "lz4-frame",
			codec:    new(lz4.FrameCodec),
		},
	}

	input := bytes.Repeat([]byte("1234567890qwertyuiopasdfghjklzxcvbnm"), 1000)
	buffer := make([]byte, 0, len(input))
	output := make([]byte, 0, len(input))

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			// Repeat to exercise the codecs that pool readers and writers
			// across calls.
			for i := 0; i < 10; i++ {
				var err error

				buffer, err = test.codec.Encode(buffer[:0], input)
				if err != nil {
					t.Fatal(err)
				}

				output, err = test.codec.Decode(output[:0], buffer)
				if err != nil {
					t.Fatal(err)
				}

				if !bytes.Equal(input, output) {
					t.Fatal("decompressed output does not match the original input")
				}
			}
		})
	}
}

func TestLookup(t *testing.T) {
	for _, code := range []format.CompressionCodec{
		format.Uncompressed,
		format.Snappy,
		format.Gzip,
		format.Brotli,
		format.Lz4,
		format.Zstd,
		format.Lz4Raw,
	} {
		codec, err := compress.Lookup(code)
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		if codec.CompressionCodec() != code {
			t.Errorf("%s: codec registered under the wrong code", code)
		}
	}

	if _, err := compress.Lookup(format.Lzo); err == nil {
		t.Error("expected no codec for LZO")
	}
}
