package wad

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildTestWad(t *testing.T, entries map[string][]byte, types map[string]byte) []byte {
	t.Helper()
	var body bytes.Buffer
	type dirEntry struct {
		offset, size int32
		typ          byte
		name         string
	}
	var dir []dirEntry
	for name, data := range entries {
		off := int32(12 + body.Len())
		body.Write(data)
		dir = append(dir, dirEntry{offset: off, size: int32(len(data)), typ: types[name], name: name})
	}

	var out bytes.Buffer
	out.WriteString("WAD2")
	binary.Write(&out, binary.LittleEndian, uint32(len(dir)))
	dirOffsetPos := out.Len()
	binary.Write(&out, binary.LittleEndian, uint32(0))
	out.Write(body.Bytes())
	dirOffset := uint32(out.Len())
	for _, d := range dir {
		binary.Write(&out, binary.LittleEndian, d.offset)
		binary.Write(&out, binary.LittleEndian, d.size)
		binary.Write(&out, binary.LittleEndian, d.size)
		out.WriteByte(d.typ)
		out.WriteByte(0)
		binary.Write(&out, binary.LittleEndian, int16(0))
		var nameBuf [16]byte
		copy(nameBuf[:], d.name)
		out.Write(nameBuf[:])
	}
	raw := out.Bytes()
	binary.LittleEndian.PutUint32(raw[8:12], dirOffset)
	_ = dirOffsetPos
	return raw
}

func TestLoadAndGetLump(t *testing.T) {
	data := buildTestWad(t, map[string][]byte{
		"conchars": []byte("hello"),
	}, map[string]byte{"conchars": typQPic})

	a, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	lump, err := a.GetLump("CONCHARS")
	if err != nil {
		t.Fatalf("GetLump() error = %v", err)
	}
	if string(lump) != "hello" {
		t.Errorf("GetLump() = %q, want %q", lump, "hello")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := Load([]byte("not a wad file at all")); err == nil {
		t.Error("Load() with bad magic: want error, got nil")
	}
}

func TestDecodeMipTexture(t *testing.T) {
	var buf bytes.Buffer
	var nameBuf [16]byte
	copy(nameBuf[:], "wall1")
	buf.Write(nameBuf[:])
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	offsets := [4]uint32{40, 40 + 16, 40 + 16 + 4, 40 + 16 + 4 + 1}
	for _, o := range offsets {
		binary.Write(&buf, binary.LittleEndian, o)
	}
	buf.Write(bytes.Repeat([]byte{1}, 16))
	buf.Write(bytes.Repeat([]byte{2}, 4))
	buf.Write([]byte{3})
	buf.Write([]byte{4})

	mt, err := DecodeMipTexture(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeMipTexture() error = %v", err)
	}
	if mt.Name != "wall1" || mt.Width != 4 || mt.Height != 4 {
		t.Errorf("got %+v", mt)
	}
	if len(mt.Mips[0]) != 16 {
		t.Errorf("mip 0 len = %d, want 16", len(mt.Mips[0]))
	}
}
