package costs

// smallKana pairs each small kana with its full-size form.
var smallKana = map[rune]rune{
	'ぁ': 'あ', 'ぃ': 'い', 'ぅ': 'う', 'ぇ': 'え', 'ぉ': 'お',
	'っ': 'つ', 'ゃ': 'や', 'ゅ': 'ゆ', 'ょ': 'よ', 'ゎ': 'わ',
	'ゕ': 'か', 'ゖ': 'け',
}

var fullKana = func() map[rune]rune {
	m := make(map[rune]rune, len(smallKana))
	for s, f := range smallKana {
		m[f] = s
	}
	return m
}()

// KanaSizeVariants returns the readings that differ from reading in the
// size of exactly one kana, in position order.
func KanaSizeVariants(reading string) []string {
	runes := []rune(reading)
	var out []string
	for i, r := range runes {
		alt, ok := smallKana[r]
		if !ok {
			alt, ok = fullKana[r]
		}
		if !ok {
			continue
		}
		runes[i] = alt
		out = append(out, string(runes))
		runes[i] = r
	}
	return out
}
