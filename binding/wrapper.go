package main

// #include <stdlib.h>
import "C"

import (
	"encoding/json"
	"unsafe"

	"github.com/rs/zerolog/log"
	"github.com/steosofficial/azmorph/analyzer"
	"github.com/steosofficial/azmorph/config"
)

var morphAnalyzer *analyzer.Analyzer

// CreateAnalyzer загружает словарь. configPath может быть пустым;
// возвращает 0 при успехе и -1 при ошибке.
//
//export CreateAnalyzer
func CreateAnalyzer(configPath *C.char) C.int {
	cfg, err := config.Load(C.GoString(configPath))
	if err != nil {
		log.Error().Err(err).Msg("Ошибка загрузки конфигурации")
		return -1
	}
	a, err := analyzer.Load(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Ошибка загрузки анализатора")
		return -1
	}
	morphAnalyzer = a
	return 0
}

// AnalyzeWord возвращает разборы слова в виде JSON-массива.
// Строку нужно освободить через FreeString.
//
//export AnalyzeWord
func AnalyzeWord(word *C.char) *C.char {
	if morphAnalyzer == nil {
		return C.CString("[]")
	}
	parses, err := morphAnalyzer.Analyze(C.GoString(word))
	if err != nil {
		log.Error().Err(err).Msg("Ошибка разбора")
		return C.CString("[]")
	}
	parsesJson, err := json.Marshal(parses)
	if err != nil {
		return C.CString("[]")
	}
	return C.CString(string(parsesJson))
}

//export FreeString
func FreeString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export ReleaseAnalyzer
func ReleaseAnalyzer() {
	if morphAnalyzer != nil {
		_ = morphAnalyzer.Close()
	}
	morphAnalyzer = nil
}

func main() {}
