package layout

// Fit returns the viewport framing the given nodes with padding on every
// side. Unknown ids are skipped; when none is known the whole drawing is
// framed.
func Fit(res Result, ids []string, padding float64) Rect {
	var r Rect
	found := false
	for _, id := range ids {
		n, ok := res.Node(id)
		if !ok {
			continue
		}
		if !found {
			r, found = n.Box, true
			continue
		}
		r = r.Union(n.Box)
	}
	if !found {
		r = res.Bounds()
	}
	return r.Inset(padding)
}
