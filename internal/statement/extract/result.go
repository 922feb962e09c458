// Package extract reads raw PDF bytes and produces the per-page text,
// tables and positioned word tokens the rest of the pipeline consumes.
package extract

// Word is a positioned token on a page. Coordinates are in PDF points with
// the origin at the top-left corner, X0/X1 the horizontal extent and
// Top/Bottom the vertical extent.
type Word struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Mid returns the horizontal midpoint of the word.
func (w Word) Mid() float64 { return (w.X0 + w.X1) / 2 }

// Table is an ordered list of rows of ordered cell strings.
type Table [][]string

// PageMeta carries lightweight per-page extraction metadata.
type PageMeta struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Rotation       int     `json:"rotation"`
	HasImages      bool    `json:"has_images"`
	TablesFound    int     `json:"tables_found"`
	TablesStrategy string  `json:"tables_strategy"`
	WordsFound     int     `json:"words_found"`
	CharsCount     int     `json:"chars_count"`
	OCRApplied     bool    `json:"ocr_applied"`
}

// OCRInfo summarizes how OCR was used on a document.
type OCRInfo struct {
	Enabled      bool   `json:"enabled"`
	AppliedPages []int  `json:"applied_pages"`
	Engine       string `json:"engine,omitempty"`
	DPI          int    `json:"dpi"`
	MaxPages     int    `json:"max_pages"`
}

// Result is the immutable outcome of low-level PDF extraction, prior to any
// normalization or parsing. DocumentID is the sha256 of the raw input bytes
// and the sole idempotency key. Slices are indexed by page, already
// reassembled in page order regardless of worker completion order.
type Result struct {
	DocumentID      string     `json:"document_id"`
	Filename        string     `json:"filename,omitempty"`
	PagesCount      int        `json:"pages_count"`
	PageTexts       []string   `json:"page_texts"`
	PageTables      [][]Table  `json:"page_tables"`
	PageWords       [][]Word   `json:"page_words"`
	ImageBasedPages []bool     `json:"image_based_pages"`
	FirstPageText   string     `json:"first_page_text"`
	Pages           []PageMeta `json:"pages"`
	OCR             OCRInfo    `json:"ocr"`
}

// TextSearchable reports whether any page carries a native text layer.
func (r *Result) TextSearchable() bool {
	for _, t := range r.PageTexts {
		if len(t) > 0 {
			return true
		}
	}
	return false
}
