package engine

import "strings"

// LanguagePreference is the ordered list of acceptable caption languages:
// the explicit request first, then a fixed fallback priority.
type LanguagePreference struct {
	Requested string
	Fallback  []string
}

// Codes returns the preference flattened into one ordered list, without duplicates.
func (p LanguagePreference) Codes() []string {
	out := make([]string, 0, len(p.Fallback)+1)
	seen := make(map[string]bool, len(p.Fallback)+1)
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	add(p.Requested)
	for _, c := range p.Fallback {
		add(c)
	}
	return out
}

// SelectLanguage picks the best caption language from available.
//
//  1. exact match of requested
//  2. first available code starting with requested (pt -> pt-BR)
//  3. prefix match for each fallback code, in list order
//  4. first available code
//
// Slice order is the stable iteration order for rules 2–4.
func SelectLanguage(available []string, requested string, fallback []string) (string, error) {
	if len(available) == 0 {
		return "", &Error{Kind: KindNoCaptions, Err: ErrNoCaptions}
	}
	if requested != "" {
		for _, code := range available {
			if code == requested {
				return code, nil
			}
		}
		for _, code := range available {
			if strings.HasPrefix(code, requested) {
				return code, nil
			}
		}
	}
	for _, fb := range fallback {
		if fb == "" {
			continue
		}
		for _, code := range available {
			if strings.HasPrefix(code, fb) {
				return code, nil
			}
		}
	}
	return available[0], nil
}

// SelectTrack applies SelectLanguage to track descriptors. When the chosen
// code has both a manual and an auto-generated track, the manual one wins.
func SelectTrack(tracks []CaptionTrack, pref LanguagePreference) (CaptionTrack, error) {
	codes := make([]string, 0, len(tracks))
	for _, t := range tracks {
		codes = append(codes, t.LanguageCode)
	}
	code, err := SelectLanguage(codes, pref.Requested, pref.Fallback)
	if err != nil {
		return CaptionTrack{}, err
	}
	var picked *CaptionTrack
	for i := range tracks {
		if tracks[i].LanguageCode != code {
			continue
		}
		if picked == nil || (picked.IsGenerated && !tracks[i].IsGenerated) {
			picked = &tracks[i]
		}
	}
	return *picked, nil
}

// BaseLanguage strips region and yt-dlp suffixes: "pt-BR" -> "pt", "en-orig" -> "en".
func BaseLanguage(code string) string {
	code = strings.TrimSuffix(code, "-orig")
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}
