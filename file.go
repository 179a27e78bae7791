// Package ddsave decodes and encodes Darkest Dungeon save files, both in
// their binary on-disk form and in the JSON form produced by tools like
// the game's own unpacker. See File for the entry points.
package ddsave

// builtinVersionField is the synthetic field every save's root object
// carries for its format version number. It isn't a real game field: it's
// injected by the binary header's version number on decode, and written
// back out as the first JSON key on encode.
const builtinVersionField = "__revision_dont_touch"

// File is a fully decoded Darkest Dungeon save: a tree of named, typed
// fields rooted at a single top-level object.
//
// # Binary round-trip fidelity
//
// Files produced by the game contain a handful of unidentified bits (see
// the fields-table bit-31 "garbage" bit). Binary -> File -> Binary is
// therefore only minimally lossy: those bits are not reproduced. File ->
// Binary and File <-> JSON are both lossless.
type File struct {
	h   header
	o   objects
	f   fields
	dat []Field
}

// Version returns the save format version number stored in the header
// (and mirrored as the "__revision_dont_touch" field in JSON).
func (file *File) Version() uint32 {
	return file.h.version
}

// rootField returns the field index of the file's single root object.
func (file *File) rootField() (FieldIdx, bool) {
	for _, oi := range file.o.items {
		if !oi.hasParent {
			return oi.field, true
		}
	}
	return 0, false
}
