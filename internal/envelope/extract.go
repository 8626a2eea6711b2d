package envelope

// Marker fields identifying an order-book update.
const (
	FieldBids    = "bids"
	FieldAsks    = "asks"
	FieldMarket  = "market"
	FieldPayload = "payload"
)

// IsPayload reports whether o carries any marker field. Empty marker values
// still count; emptiness is judged by the snapshot processor.
func IsPayload(o Object) bool {
	return o.Has(FieldBids) || o.Has(FieldAsks) || o.Has(FieldMarket)
}

// Extract returns the innermost object that looks like an order-book update.
//
//   - an object carrying a marker field is returned as-is
//   - otherwise a non-empty "payload" field is searched recursively
//   - a sequence yields the first element whose search succeeds
//
// Any other shape reports false.
func Extract(v Value) (Object, bool) {
	switch x := v.(type) {
	case Object:
		if IsPayload(x) {
			return x, true
		}
		if inner, ok := x[FieldPayload]; ok && !empty(inner) {
			return Extract(inner)
		}
		return nil, false

	case Sequence:
		for _, item := range x {
			obj, ok := item.(Object)
			if !ok {
				continue
			}
			if p, ok := Extract(obj); ok {
				return p, true
			}
		}
		return nil, false
	}

	return nil, false
}

// Candidates returns every payload in a frame. A top-level sequence is
// treated as a batch: each element is extracted on its own, so a frame of
// several books yields several payloads. Anything else yields at most one.
func Candidates(v Value) []Object {
	seq, ok := v.(Sequence)
	if !ok {
		if p, ok := Extract(v); ok {
			return []Object{p}
		}
		return nil
	}

	var out []Object
	for _, item := range seq {
		if _, ok := item.(Object); !ok {
			continue
		}
		if p, ok := Extract(item); ok {
			out = append(out, p)
		}
	}
	return out
}
