package pattern

// Compiled is a structural pattern bound to the language it will be parsed in.
// A pattern that is valid in one grammar may be invalid in another, so the
// pair is the unit handed to an Engine.
type Compiled struct {
	Pattern  string
	Language Language
}

// Match is a single structural match within one document.
type Match struct {
	StartLine int    // 0-indexed row of the first byte
	StartByte int    // byte offset of the match in the document
	EndByte   int    // exclusive end offset
	Text      string // the matched source text

	// Single maps metavariable names ($FN) to the captured text.
	Single map[string]string
	// Multi maps multi-metavariable names ($$$ARGS) to the source text spanning
	// every captured node, separators included.
	Multi map[string]string
}

// Edit replaces document bytes [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// AstGrepMatch represents a single match from ast-grep JSON output.
// Actual format from ast-grep v0.39:
//
//	{
//	  "text": "print(x + y)",
//	  "range": {"byteOffset": {"start": 21, "end": 33},
//	            "start": {"line": 1, "column": 4}, "end": {"line": 1, "column": 16}},
//	  "file": "STDIN",
//	  "replacement": "print(x + y, 5)",
//	  "replacementOffsets": {"start": 21, "end": 33},
//	  "metaVariables": {"single": {"FN": {"text": "print", "range": {...}}},
//	                    "multi": {"ARGS": [{"text": "x + y", "range": {...}}]}}
//	}
type AstGrepMatch struct {
	File               string          `json:"file"`
	Text               string          `json:"text"`
	Range              AstGrepRange    `json:"range"`
	Replacement        *string         `json:"replacement,omitempty"`
	ReplacementOffsets *AstGrepOffsets `json:"replacementOffsets,omitempty"`
	MetaVariables      AstGrepMetaVars `json:"metaVariables"`
}

// AstGrepRange represents the byte and line/column span of a node.
type AstGrepRange struct {
	ByteOffset AstGrepOffsets  `json:"byteOffset"`
	Start      AstGrepPosition `json:"start"`
	End        AstGrepPosition `json:"end"`
}

// AstGrepOffsets is a [start, end) byte span.
type AstGrepOffsets struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// AstGrepPosition represents a line/column position.
type AstGrepPosition struct {
	Line   int `json:"line"` // 0-indexed
	Column int `json:"column"`
}

// AstGrepMetaVars contains captured metavariables.
type AstGrepMetaVars struct {
	Single map[string]AstGrepMetaVar   `json:"single"`
	Multi  map[string][]AstGrepMetaVar `json:"multi"`
}

// AstGrepMetaVar represents a captured metavariable.
type AstGrepMetaVar struct {
	Text  string       `json:"text"`
	Range AstGrepRange `json:"range"`
}
