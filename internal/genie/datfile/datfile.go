// Package datfile declares the record layouts of Genie Engine empires*.dat
// files. Every exported *schema.Schema branches on the game version; the
// reader package turns them into decoded records.
package datfile

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/cory-johannsen/genie/internal/genie/schema"
)

// Decompress inflates a raw-deflate dat stream into a single buffer.
//
// Postcondition: returns the whole decompressed file, or an error if the
// stream is not valid deflate data.
func Decompress(r io.Reader) ([]byte, error) {
	fr := flate.NewReader(r)
	defer fr.Close()
	var out bytes.Buffer
	if _, err := io.Copy(&out, fr); err != nil {
		return nil, fmt.Errorf("inflating dat stream: %w", err)
	}
	return out.Bytes(), nil
}

// Blocks lists the top-level schemas that can be read on their own, by name.
func Blocks() map[string]*schema.Schema {
	return map[string]*schema.Schema{
		EmpiresDat.Name:    EmpiresDat,
		EffectBundles.Name: EffectBundles,
		UnitHeaders.Name:   UnitHeaders,
		Civs.Name:          Civs,
	}
}

func readMember(r any) schema.ReadMember {
	switch x := r.(type) {
	case string:
		return schema.Raw(x)
	case schema.ReadMember:
		return x
	}
	panic(fmt.Sprintf("datfile: unsupported read member %T", r))
}

// gen is an exported field.
func gen(name string, st schema.StorageType, r any) schema.Entry {
	return schema.Entry{Access: schema.ReadGen, Name: name, Storage: st, Read: readMember(r)}
}

// read is a stored, unexported field.
func read(name string, st schema.StorageType, r any) schema.Entry {
	return schema.Entry{Access: schema.Read, Name: name, Storage: st, Read: readMember(r)}
}

func skip(name string, r any) schema.Entry {
	return schema.Entry{Access: schema.Skip, Name: name, Storage: schema.None, Read: readMember(r)}
}

func unknown(st schema.StorageType, r any) schema.Entry {
	return schema.Entry{Access: schema.ReadUnknown, Storage: st, Read: readMember(r)}
}

func include(s *schema.Schema) schema.Entry {
	return schema.Entry{Access: schema.ReadGen, Read: &schema.Include{Schema: s}}
}

func subdata(name string, s *schema.Schema, length schema.Length) schema.Entry {
	return gen(name, schema.ArrayContainer, &schema.Subdata{Schema: s, Length: length})
}

// deString is the DE length-prefixed string: a debug length that is
// discarded, the real length, then the bytes.
func deString(name string) []schema.Entry {
	return []schema.Entry{
		skip(name+"_len_debug", "uint16_t"),
		read(name+"_len", schema.Int, "uint16_t"),
		gen(name, schema.String, "char["+name+"_len]"),
	}
}
