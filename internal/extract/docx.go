package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// A DOCX file is a zip archive; the document body lives in
// word/document.xml as WordprocessingML. Text runs are <w:t> elements
// inside <w:p> paragraphs; paragraphs become newlines, tabs and explicit
// breaks become whitespace.

const docxDocumentPath = "word/document.xml"

var errNoDocumentXML = errors.New("docx: missing word/document.xml")

func docxText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = archive.Close()
	}()

	for _, f := range archive.File {
		if f.Name != docxDocumentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		text, err := wordprocessingText(rc)
		_ = rc.Close()
		return text, err
	}
	return "", errNoDocumentXML
}

// wordprocessingText walks the WordprocessingML token stream and collects
// the character data of every text run.
func wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
