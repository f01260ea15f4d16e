package chart

// AddSeries returns a new list with s appended.
func AddSeries(list []Series, s Series) []Series {
	out := make([]Series, 0, len(list)+1)
	out = append(out, list...)
	if s.Aggregation == "" {
		s.Aggregation = AggregateSum
	}
	if s.Color == "" {
		s.Color = Palette[len(list)%len(Palette)]
	}
	return append(out, s)
}

// RemoveSeries returns a new list without the series identified by key.
func RemoveSeries(list []Series, key string) []Series {
	out := make([]Series, 0, len(list))
	for _, s := range list {
		if s.Key != key {
			out = append(out, s)
		}
	}
	return out
}

// UpdateSeries returns a new list with patch merged into the series with the
// given key. Unknown keys leave the list unchanged.
func UpdateSeries(list []Series, key string, patch SeriesPatch) []Series {
	out := append([]Series(nil), list...)
	for i := range out {
		if out[i].Key != key {
			continue
		}
		if patch.Label != nil {
			out[i].Label = *patch.Label
		}
		if patch.Color != nil {
			out[i].Color = *patch.Color
		}
		if patch.Aggregation != nil && patch.Aggregation.Valid() {
			out[i].Aggregation = *patch.Aggregation
		}
		if patch.GroupBy != nil {
			out[i].GroupBy = *patch.GroupBy
		}
	}
	return out
}

// ToggleSeriesVisibility returns a copy of active with key flipped. The series
// configuration itself is not touched.
func ToggleSeriesVisibility(active ActiveSet, key string) ActiveSet {
	out := active.Clone()
	if out[key] {
		delete(out, key)
	} else {
		out[key] = true
	}
	return out
}

func hasSeries(list []Series, key string) bool {
	for _, s := range list {
		if s.Key == key {
			return true
		}
	}
	return false
}
