//go:build shared

package main

import "C"

// These exported functions are only compiled when building with
// -buildmode=c-shared. The orchestrator resolves them by name after
// injecting the module.

//export Run
func Run() {
	// Primary entry point, called by the loader after the module maps
	go runTranslator()
}

//export ToggleTranslation
func ToggleTranslation() {
	getModule().Toggle()
}

//export GetCacheSize
func GetCacheSize() C.int {
	return C.int(getModule().CacheSize())
}

//export ClearCache
func ClearCache() {
	getModule().ClearCache()
}

//export GST_IsActive
func GST_IsActive() C.int {
	if getModule().IsActive() {
		return 1
	}
	return 0
}

//export GST_SetEnabled
func GST_SetEnabled(enabled C.int) {
	getModule().SetEnabled(enabled != 0)
}

//export GST_SetTargetLanguage
func GST_SetTargetLanguage(lang *C.char) {
	if lang != nil {
		getModule().SetTargetLanguage(C.GoString(lang))
	}
}

//export GST_GetStats
func GST_GetStats(requests, hits, errors *C.ulonglong) {
	s := getModule().Stats()
	if requests != nil {
		*requests = C.ulonglong(s.TotalRequests)
	}
	if hits != nil {
		*hits = C.ulonglong(s.CacheHits)
	}
	if errors != nil {
		*errors = C.ulonglong(s.Errors)
	}
}

//export GST_Shutdown
func GST_Shutdown() {
	getModule().Shutdown()
}
