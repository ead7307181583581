package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiresAmount(t *testing.T) {
	assert.True(t, DocFiscal.RequiresAmount())
	assert.True(t, DocTicket.RequiresAmount())
	assert.True(t, DocHotel.RequiresAmount())
	assert.False(t, DocBoarding.RequiresAmount())
	assert.False(t, DocConfirmation.RequiresAmount())
}

func TestParseDocumentTypeDefaultsToFiscal(t *testing.T) {
	assert.Equal(t, DocFiscal, ParseDocumentType(""))
	assert.Equal(t, DocFiscal, ParseDocumentType("garbage"))
	assert.Equal(t, DocBoarding, ParseDocumentType("boarding"))
}
