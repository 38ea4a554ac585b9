package xmp

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/ImagingTriage/internal/domain"
)

const lightroomSidecar = `<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/" x:xmptk="Adobe XMP Core 7.0-c000">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:xmp="http://ns.adobe.com/xap/1.0/"
    xmlns:tiff="http://ns.adobe.com/tiff/1.0/"
   xmp:Rating="3"
   xmp:Label="Red"
   tiff:Make="SONY">
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`

func TestDecode_AttributeForm(t *testing.T) {
	m, err := Decode(strings.NewReader(lightroomSidecar))
	require.NoError(t, err)
	assert.Equal(t, domain.Metadata{Rating: "3", Label: "Red"}, m)
}

func TestDecode_ElementForm(t *testing.T) {
	doc := `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description xmlns:xmp="http://ns.adobe.com/xap/1.0/">
   <xmp:Rating> 4 </xmp:Rating>
   <xmp:Label>Green</xmp:Label>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.Metadata{Rating: "4", Label: "Green"}, m)
}

func TestDecode_FirstDescriptionWins(t *testing.T) {
	doc := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:xmp="http://ns.adobe.com/xap/1.0/">
  <rdf:Description xmp:Label="Blue"/>
  <rdf:Description xmp:Rating="5" xmp:Label="Red"/>
</rdf:RDF>`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.Metadata{Label: "Blue"}, m)
}

func TestDecode_WrongNamespaceIgnored(t *testing.T) {
	doc := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns:other="urn:other">
  <rdf:Description other:Rating="5"/>
</rdf:RDF>`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestDecode_NoDescription(t *testing.T) {
	m, err := Decode(strings.NewReader(`<x:xmpmeta xmlns:x="adobe:ns:meta/"/>`))
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]string{
		"unclosed":   `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"><rdf:Description>`,
		"mismatched": `<a><b></a></b>`,
		"empty":      ``,
		"not xml":    `just some text`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "gone.xmp"))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.xmp")
	require.NoError(t, os.WriteFile(bad, []byte("<x:xmpmeta"), 0o644))
	_, err = Read(bad)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "bad.xmp")

	good := filepath.Join(dir, "good.xmp")
	require.NoError(t, os.WriteFile(good, []byte(lightroomSidecar), 0o644))
	m, err := Read(good)
	require.NoError(t, err)
	assert.Equal(t, "3", m.Rating)
}

func TestDecode_DeclaredLatin1(t *testing.T) {
	doc := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>" +
		`<x:xmpmeta xmlns:x="adobe:ns:meta/"><rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` +
		`<rdf:Description xmlns:xmp="http://ns.adobe.com/xap/1.0/" xmp:Rating="2" xmp:Label="Caf` + "\xe9" + `"/>` +
		`</rdf:RDF></x:xmpmeta>`
	m, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.Metadata{Rating: "2", Label: "Café"}, m)
}

func TestDecode_UnknownCharset(t *testing.T) {
	doc := `<?xml version="1.0" encoding="x-no-such-charset"?><a/>`
	_, err := Decode(strings.NewReader(doc))
	require.Error(t, err)
}
