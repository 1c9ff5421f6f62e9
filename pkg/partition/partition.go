// Package partition splits a range of work into contiguous pieces that can be
// handed to pool workers independently.
package partition

// Part is the half-open range [Offset, Offset+Length).
type Part struct {
	Offset int64
	Length int64
}

func (p Part) End() int64 {
	return p.Offset + p.Length
}

// Split covers [0, total) with parts of chunk elements. A remainder smaller than
// chunk is cut into workers equal pieces, and whatever does not divide evenly
// goes into one trailing part. When the remainder is smaller than workers it is kept
// as a single part.
//
// Non-positive total yields no parts, non-positive chunk means a single chunk of
// total, and non-positive workers is treated as one.
func Split(total, chunk int64, workers int) []Part {
	if total <= 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = total
	}
	if workers <= 0 {
		workers = 1
	}

	full := total / chunk
	parts := make([]Part, 0, full+int64(workers)+1)

	var offset int64
	for range full {
		parts = append(parts, Part{Offset: offset, Length: chunk})
		offset += chunk
	}

	remains := total % chunk
	if remains == 0 {
		return parts
	}

	each := remains / int64(workers)
	if each == 0 {
		return append(parts, Part{Offset: offset, Length: remains})
	}
	for range workers {
		parts = append(parts, Part{Offset: offset, Length: each})
		offset += each
	}
	if tail := remains % int64(workers); tail > 0 {
		parts = append(parts, Part{Offset: offset, Length: tail})
	}
	return parts
}
