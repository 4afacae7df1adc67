// Package wad reads Quake WAD2 texture archives: the container format
// gfx.wad and per-level texture WADs (referenced by a MAP's worldspawn
// "wad" key) both use.
package wad

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"goquakemap/palette"
)

const (
	typPalette    = 0x40
	typQPic       = 0x42
	typMipTex     = 0x44
	typConsolePic = 0x45
)

type header struct {
	Magic      [4]byte
	EntryCount uint32
	DirOffset  uint32
}

type lump struct {
	Offset      int32
	Dsize       int32
	Size        int32
	Typ         byte
	Compression byte
	Dummy       int16
	Name        [16]byte
}

func (l lump) name() string {
	n := l.Name[:]
	if i := bytes.IndexByte(n, 0); i >= 0 {
		n = n[:i]
	}
	return strings.ToLower(string(n))
}

// MipTexture is a decoded mip-mapped wall texture: four progressively
// halved mip levels of 8-bit palette-indexed pixels.
type MipTexture struct {
	Name    string
	Width   uint32
	Height  uint32
	Mips    [4][]byte // indexed pixel data, mip 0 is full resolution
}

// Archive is a parsed WAD2 container: its raw bytes plus a directory of
// lump locations, so lumps are decoded lazily on GetLump/GetMipTexture.
type Archive struct {
	data  []byte
	lumps []lump
}

// Load parses a WAD2 archive from raw bytes.
func Load(data []byte) (*Archive, error) {
	if len(data) < 12 {
		return nil, errors.New("wad: file too short for header")
	}
	buf := bytes.NewReader(data)
	var h header
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "wad: reading header")
	}
	if h.Magic != [4]byte{'W', 'A', 'D', '2'} {
		return nil, errors.New("wad: missing WAD2 magic")
	}
	if _, err := buf.Seek(int64(h.DirOffset), io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "wad: seeking directory")
	}
	lumps := make([]lump, h.EntryCount)
	if err := binary.Read(buf, binary.LittleEndian, &lumps); err != nil {
		return nil, errors.Wrap(err, "wad: reading directory")
	}
	return &Archive{data: data, lumps: lumps}, nil
}

// GetLump returns the raw bytes of the lump named n (case-insensitive).
func (a *Archive) GetLump(n string) ([]byte, error) {
	name := strings.ToLower(n)
	for _, l := range a.lumps {
		if l.name() == name {
			if int(l.Offset)+int(l.Size) > len(a.data) {
				return nil, errors.Errorf("wad: lump %q extends past end of file", n)
			}
			return a.data[l.Offset : l.Offset+l.Size], nil
		}
	}
	return nil, errors.Errorf("wad: lump %q not found", n)
}

// LumpNames returns every lump name in directory order.
func (a *Archive) LumpNames() []string {
	out := make([]string, len(a.lumps))
	for i, l := range a.lumps {
		out[i] = l.name()
	}
	return out
}

// GetMipTexture decodes the named lump as a mip texture.
func (a *Archive) GetMipTexture(name string) (*MipTexture, error) {
	lname := strings.ToLower(name)
	for _, l := range a.lumps {
		if l.name() != lname {
			continue
		}
		if l.Typ != typMipTex {
			return nil, errors.Errorf("wad: lump %q is not a mip texture (type %#x)", name, l.Typ)
		}
		if int(l.Offset)+int(l.Size) > len(a.data) {
			return nil, errors.Errorf("wad: lump %q extends past end of file", name)
		}
		return DecodeMipTexture(a.data[l.Offset : l.Offset+l.Size])
	}
	return nil, errors.Errorf("wad: lump %q not found", name)
}

// GetEmbeddedPalette decodes the archive's own "PALETTE" lump, present
// in gfx.wad but not in most per-level texture WADs.
func (a *Archive) GetEmbeddedPalette() (*palette.Palette, error) {
	for _, l := range a.lumps {
		if l.Typ != typPalette {
			continue
		}
		if int(l.Offset)+int(l.Size) > len(a.data) {
			return nil, errors.New("wad: palette lump extends past end of file")
		}
		return palette.Decode(a.data[l.Offset : l.Offset+l.Size])
	}
	return nil, errors.New("wad: no embedded palette lump")
}

// GetConsolePic decodes the console-background QPic lump some gfx.wad
// files carry, kept distinct from a plain image lump since it uses the
// typConsolePic tag rather than typQPic.
func (a *Archive) GetConsolePic() ([]byte, bool) {
	for _, l := range a.lumps {
		if l.Typ == typConsolePic {
			data, err := a.GetLump(l.name())
			return data, err == nil
		}
	}
	return nil, false
}

// DecodeMipTexture parses raw bytes in the miptex_t layout (also used
// inline inside a BSP file's texture lump, not just inside WAD archives).
func DecodeMipTexture(data []byte) (*MipTexture, error) {
	if len(data) < 40 {
		return nil, errors.New("wad: mip texture too short")
	}
	var nameBuf [16]byte
	copy(nameBuf[:], data[0:16])
	width := binary.LittleEndian.Uint32(data[16:20])
	height := binary.LittleEndian.Uint32(data[20:24])
	var offsets [4]uint32
	for i := 0; i < 4; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[24+i*4 : 28+i*4])
	}
	name := strings.TrimRight(string(nameBuf[:]), "\x00")

	mt := &MipTexture{Name: name, Width: width, Height: height}
	for i := 0; i < 4; i++ {
		w, h := width>>uint(i), height>>uint(i)
		size := int(w * h)
		off := int(offsets[i])
		if offsets[i] == 0 || off+size > len(data) {
			continue
		}
		mt.Mips[i] = data[off : off+size]
	}
	return mt, nil
}

// DecodeRGBA converts a mip texture's base level into RGBA8 using pal.
// Index 255 decodes as fully transparent for every texture, whether or
// not its name carries the "{" fence-texture prefix.
func (m *MipTexture) DecodeRGBA(pal *palette.Palette) []byte {
	if len(m.Mips[0]) == 0 || pal == nil {
		return nil
	}
	return pal.ToRGBA(m.Mips[0])
}

func (m *MipTexture) String() string {
	return fmt.Sprintf("%s (%dx%d)", m.Name, m.Width, m.Height)
}

// QPic is a simple width/height-prefixed 8-bit image, the format used
// for UI art embedded in gfx.wad (crosshairs, menu graphics).
type QPic struct {
	Width, Height int32
	Data          []byte
}

// GetPic decodes the named lump as a QPic. Not used by level geometry
// loading; kept because a consumer resolving a level's texture WAD may
// share the same archive with the engine's UI art.
func (a *Archive) GetPic(name string) (*QPic, error) {
	lname := strings.ToLower(name)
	for _, l := range a.lumps {
		if l.name() != lname {
			continue
		}
		if l.Typ != typQPic {
			return nil, errors.Errorf("wad: lump %q is not a pic (type %#x)", name, l.Typ)
		}
		data, err := a.GetLump(name)
		if err != nil {
			return nil, err
		}
		if len(data) < 8 {
			return nil, errors.Errorf("wad: pic %q too short", name)
		}
		w := int32(binary.LittleEndian.Uint32(data[0:4]))
		h := int32(binary.LittleEndian.Uint32(data[4:8]))
		if int64(w)*int64(h)+8 > int64(len(data)) {
			return nil, errors.Errorf("wad: pic %q dimensions exceed lump size", name)
		}
		return &QPic{Width: w, Height: h, Data: data[8 : 8+w*h]}, nil
	}
	return nil, errors.Errorf("wad: lump %q not found", name)
}
