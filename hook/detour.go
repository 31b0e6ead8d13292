package hook

import "gamestringer/translate"

// Substitute is the decision every text-intercepting detour makes: run the
// filter, ask the pipeline, and report whether the result differs from the
// input. The caller only re-allocates when changed is true.
func Substitute(pipeline *translate.Pipeline, text string) (result string, changed bool) {
	if pipeline == nil || !translate.Translatable(text) {
		return text, false
	}
	translated := pipeline.Translate(text)
	if translated == "" || translated == text {
		return text, false
	}
	return translated, true
}
