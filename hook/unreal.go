package hook

import "gamestringer/process"

// Version-keyed signatures for FText::ToString. These drift between engine
// releases; the scan tolerates the ?? wildcards.
var fTextToStringSignatures = map[EngineVersion]string{
	VersionUE427: "48 89 5C 24 ?? 48 89 74 24 ?? 57 48 83 EC ?? 48 8B FA 48 8B F1",
	VersionUE5:   "40 53 48 83 EC ?? 48 8B D9 48 85 C9 74 ?? 48 8B 01",
}

// UTextBlock::SetText. Reserved: the detour passes through, translation
// happens at ToString.
var uTextBlockSetTextSignatures = map[EngineVersion]string{
	VersionUE427: "48 89 5C 24 ?? 48 89 74 24 ?? 57 48 83 EC ?? 48 8B F2 48 8B D9 48 8B 0D",
	VersionUE5:   "48 89 5C 24 ?? 57 48 83 EC ?? 48 8B FA 48 8B D9 48 8B 89",
}

// SignatureFor returns the parsed pattern for a function/version pair
func SignatureFor(table map[EngineVersion]string, version EngineVersion) (process.AOB, error) {
	sig, ok := table[version]
	if !ok {
		return process.AOB{}, ErrTargetNotFound
	}
	return process.ParseSignature(sig)
}

// FTextToStringSignature resolves the ToString pattern for a version
func FTextToStringSignature(version EngineVersion) (process.AOB, error) {
	return SignatureFor(fTextToStringSignatures, version)
}

// UTextBlockSetTextSignature resolves the SetText pattern for a version
func UTextBlockSetTextSignature(version EngineVersion) (process.AOB, error) {
	return SignatureFor(uTextBlockSetTextSignatures, version)
}
