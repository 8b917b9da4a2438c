package translate_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/niemtran/model"
	"go.jacobcolvin.com/niemtran/translate"
)

const (
	exchNS   = "http://example.com/CrashDriver/1.0/"
	jNS      = "http://release.niem.gov/niem/domains/jxdm/6.0/"
	ncNS     = "http://release.niem.gov/niem/niem-core/4.0/"
	structNS = "http://release.niem.gov/niem/structures/4.0/"
	capNS    = "http://example.com/cap/1.2/"
)

func testModel() *model.Model {
	return &model.Model{
		Attributes: map[string]string{
			ncNS + "#sequenceID": "positiveInteger",
		},
		SimpleElements: map[string]string{
			jNS + "#ChargeDescriptionText":              "string",
			jNS + "#ChargeFelonyIndicator":              "boolean",
			jNS + "#CriminalInformationIndicator":       "boolean",
			ncNS + "#PersonMiddleName":                  "string",
			ncNS + "#MeasureDecimalValueList":           "list/decimal",
			ncNS + "#CountQuantity":                     "integer",
			ncNS + "#IdentificationQuantityList":        "list/integer",
			exchNS + "#PersonFictionalCharacterIndicator": "boolean",
		},
		ExternalNamespaces: nil,
		ContextBindings: [][2]string{
			{"rdf", "http://www.w3.org/1999/02/22-rdf-syntax-ns#"},
			{"exch", exchNS + "#"},
			{"j", jNS + "#"},
			{"nc", ncNS + "#"},
			{"structures", structNS + "#"},
		},
	}
}

const docHeader = `<exch:CrashDriverInfo
  xmlns:exch="` + exchNS + `"
  xmlns:j="` + jNS + `"
  xmlns:nc="` + ncNS + `"
  xmlns:structures="` + structNS + `">`

func translateDoc(t *testing.T, body string) *translate.Result {
	t.Helper()

	res, err := translate.New(testModel()).Translate(
		strings.NewReader(docHeader + body + `</exch:CrashDriverInfo>`))
	require.NoError(t, err)

	return res
}

func dataJSON(t *testing.T, res *translate.Result) string {
	t.Helper()

	out, err := json.Marshal(res.Data)
	require.NoError(t, err)

	return string(out)
}

func TestSimpleElementWithAttributes(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<j:ChargeDescriptionText structures:id="c1">Theft</j:ChargeDescriptionText>`)

	assert.JSONEq(t, `{
		"j:ChargeDescriptionText": {"@id": "#c1", "rdf:value": "Theft"}
	}`, dataJSON(t, res))
}

func TestBooleanElement(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<j:ChargeFelonyIndicator>true</j:ChargeFelonyIndicator>`)

	assert.JSONEq(t, `{"j:ChargeFelonyIndicator": true}`, dataJSON(t, res))
}

func TestRepetitionPreservesOrder(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:PersonMiddleName>A</nc:PersonMiddleName>`+
			`<nc:PersonMiddleName>B</nc:PersonMiddleName>`)

	v, ok := res.Data.Get("nc:PersonMiddleName")
	require.True(t, ok)
	assert.Equal(t, []any{"A", "B"}, v)
}

func TestRepetitionThree(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:PersonMiddleName>A</nc:PersonMiddleName>`+
			`<nc:PersonMiddleName>B</nc:PersonMiddleName>`+
			`<nc:PersonMiddleName>C</nc:PersonMiddleName>`)

	v, _ := res.Data.Get("nc:PersonMiddleName")
	assert.Equal(t, []any{"A", "B", "C"}, v)
}

func TestAugmentationFlattening(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `<nc:Person>
		<nc:PersonMiddleName>A</nc:PersonMiddleName>
		<j:PersonAugmentation>
			<exch:PersonFictionalCharacterIndicator>true</exch:PersonFictionalCharacterIndicator>
		</j:PersonAugmentation>
	</nc:Person>`)

	out := dataJSON(t, res)
	assert.NotContains(t, out, "Augmentation")
	assert.JSONEq(t, `{
		"nc:Person": {
			"nc:PersonMiddleName": "A",
			"exch:PersonFictionalCharacterIndicator": true
		}
	}`, out)
}

func TestMetadataCrossReference(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `
		<j:JusticeMetadata structures:id="jm1">
			<j:CriminalInformationIndicator>true</j:CriminalInformationIndicator>
		</j:JusticeMetadata>
		<j:Charge structures:metadata="jm1">
			<j:ChargeDescriptionText>Theft</j:ChargeDescriptionText>
		</j:Charge>`)

	assert.JSONEq(t, `{
		"j:JusticeMetadata": {
			"@id": "#jm1",
			"j:CriminalInformationIndicator": true
		},
		"j:Charge": {
			"j:ChargeDescriptionText": "Theft",
			"j:JusticeMetadata": {"@id": "#jm1"}
		}
	}`, dataJSON(t, res))
}

func TestDecimalList(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:MeasureDecimalValueList>1.5 2.25</nc:MeasureDecimalValueList>`)

	assert.JSONEq(t, `{"nc:MeasureDecimalValueList": [1.5, 2.25]}`, dataJSON(t, res))
}

func TestIntegerCoercion(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `<nc:CountQuantity>42</nc:CountQuantity>`)

	v, ok := res.Data.Get("nc:CountQuantity")
	require.True(t, ok)
	assert.Equal(t, json.Number("42"), v)
}

func TestIntegerList(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:IdentificationQuantityList>1 2 3</nc:IdentificationQuantityList>`)

	v, _ := res.Data.Get("nc:IdentificationQuantityList")
	assert.Equal(t, []any{json.Number("1"), json.Number("2"), json.Number("3")}, v)
}

func TestSingleTokenListCollapsesToScalar(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:IdentificationQuantityList>42</nc:IdentificationQuantityList>`)

	v, _ := res.Data.Get("nc:IdentificationQuantityList")
	assert.Equal(t, json.Number("42"), v)
}

func TestStructuresURIAttribute(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<j:Charge structures:uri="doc.xml#c7"><j:ChargeDescriptionText>X</j:ChargeDescriptionText></j:Charge>`)

	v, _ := res.Data.Get("j:Charge")
	obj, ok := v.(*translate.Object)
	require.True(t, ok)

	id, ok := obj.Get("@id")
	require.True(t, ok)
	assert.Equal(t, "doc.xml#c7", id)
}

func TestSingleID(t *testing.T) {
	t.Parallel()

	// Both id and ref present: exactly one @id comes out.
	res := translateDoc(t,
		`<j:Charge structures:id="c1" structures:ref="c2"><j:ChargeDescriptionText>X</j:ChargeDescriptionText></j:Charge>`)

	v, _ := res.Data.Get("j:Charge")
	obj := v.(*translate.Object)

	count := 0

	for _, k := range obj.Keys() {
		if k == "@id" {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestTypedAttribute(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:PersonMiddleName nc:sequenceID="2">A</nc:PersonMiddleName>`)

	assert.JSONEq(t, `{
		"nc:PersonMiddleName": {"nc:sequenceID": 2, "rdf:value": "A"}
	}`, dataJSON(t, res))
}

func TestXSIAttributesIgnored(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:PersonMiddleName xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:nil="false">A</nc:PersonMiddleName>`)

	assert.JSONEq(t, `{"nc:PersonMiddleName": "A"}`, dataJSON(t, res))
}

func TestXMLBase(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<j:Charge xml:base="http://example.com/doc/"><j:ChargeDescriptionText>X</j:ChargeDescriptionText></j:Charge>`)

	v, _ := res.Data.Get("j:Charge")
	obj := v.(*translate.Object)

	base, ok := obj.Get("@base")
	require.True(t, ok)
	assert.Equal(t, "http://example.com/doc/", base)
}

func TestContextExtension(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<cap:AlertText xmlns:cap="`+capNS+`">storm</cap:AlertText>`)

	assert.True(t, res.Extended())

	ext, ok := res.ContextExtension.Get("cap")
	require.True(t, ok)
	assert.Equal(t, capNS+"#", ext)

	// The full context carries both the model bindings and the extension.
	v, ok := res.Context.Get("nc")
	require.True(t, ok)
	assert.Equal(t, ncNS+"#", v)

	_, ok = res.Context.Get("cap")
	assert.True(t, ok)
}

func TestNoExtensionFlagWhenCovered(t *testing.T) {
	t.Parallel()

	res := translateDoc(t,
		`<nc:PersonMiddleName>A</nc:PersonMiddleName>`)

	assert.False(t, res.Extended())
	assert.Equal(t, 0, res.ContextExtension.Len())
}

func TestMessageFormatID(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `<nc:PersonMiddleName>A</nc:PersonMiddleName>`)
	assert.Equal(t, exchNS+"#CrashDriverInfo", res.MessageFormatID)
}

func TestContextURIsCarryTrailingHash(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `<nc:PersonMiddleName>A</nc:PersonMiddleName>`)

	for _, k := range res.Context.Keys() {
		v, _ := res.Context.Get(k)
		uri, ok := v.(string)
		require.True(t, ok)
		assert.True(t, strings.HasSuffix(uri, "#"), "context uri %s should end in #", uri)
	}
}

func TestDocumentAssembly(t *testing.T) {
	t.Parallel()

	res := translateDoc(t, `<j:ChargeFelonyIndicator>true</j:ChargeFelonyIndicator>`)

	doc := res.Document()
	keys := doc.Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, "@context", keys[0])
	assert.True(t, doc.Has("j:ChargeFelonyIndicator"))
}

func TestMalformedInput(t *testing.T) {
	t.Parallel()

	_, err := translate.New(testModel()).Translate(strings.NewReader("<a><b></a>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, translate.ErrTranslate)
}

func TestTranslatorReuse(t *testing.T) {
	t.Parallel()

	tr := translate.New(testModel())

	for i := 0; i < 3; i++ {
		res, err := tr.Translate(strings.NewReader(
			docHeader + `<j:ChargeFelonyIndicator>1</j:ChargeFelonyIndicator></exch:CrashDriverInfo>`))
		require.NoError(t, err)
		assert.JSONEq(t, `{"j:ChargeFelonyIndicator": true}`, dataJSON(t, res))
	}
}
