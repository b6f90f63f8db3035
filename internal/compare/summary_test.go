package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waystation/internal/models"
)

func full(rfqID, item string, q models.Quote) models.FullQuote {
	return models.FullQuote{Quote: q, RFQ: models.RFQInfo{ID: rfqID, Item: item}}
}

func TestSummarizeByRFQ(t *testing.T) {
	quotes := []models.FullQuote{
		full("r2", "Cashews", completeQuote("c1", 6.5)),
		full("r1", "Almonds", completeQuote("a1", 4.0)),
		full("r2", "Cashews", unpriced("c2")),
		full("r1", "Almonds", completeQuote("a2", 3.5)),
		full("r1", "Almonds", completeQuote("a3", 3.5)),
	}

	got := SummarizeByRFQ(quotes)
	require.Len(t, got, 2)

	assert.Equal(t, "r2", got[0].RFQ.ID)
	assert.Equal(t, 2, got[0].QuoteCount)
	assert.Equal(t, 1, got[0].PricedCount)
	assert.Equal(t, models.Present(6.5), got[0].BestPrice)
	assert.Equal(t, "c1", got[0].BestQuoteID)

	assert.Equal(t, "Almonds", got[1].RFQ.Item)
	assert.Equal(t, 3, got[1].QuoteCount)
	assert.Equal(t, models.Present(3.5), got[1].BestPrice)
	assert.Equal(t, "a2", got[1].BestQuoteID)
}

func TestSummarizeUnpricedGroup(t *testing.T) {
	got := SummarizeByRFQ([]models.FullQuote{full("r", "Oats", unpriced("o"))})
	require.Len(t, got, 1)
	assert.False(t, got[0].BestPrice.IsPresent())
	assert.Empty(t, got[0].BestQuoteID)
	assert.Equal(t, 0, got[0].PricedCount)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, SummarizeByRFQ(nil))
}
