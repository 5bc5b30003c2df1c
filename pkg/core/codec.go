package core

import "github.com/bytedance/sonic"

// JSON is the codec used for request bodies, response decoding and output.
// Numbers decode as json.Number so exchange decimals keep their exact text,
// and map keys are sorted so a serialized body is stable.
var JSON = sonic.Config{
	UseNumber:   true,
	SortMapKeys: true,
	EscapeHTML:  false,
}.Froze()
