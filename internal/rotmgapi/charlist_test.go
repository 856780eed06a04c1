package rotmgapi_test

import (
	"testing"

	"github.com/ras0q/rotmgstash/internal/rotmgapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const charListBody = `<?xml version="1.0" encoding="utf-8"?>
<Chars nextCharId="3" maxNumChars="2">
  <Char id="1">
    <ObjectType>782</ObjectType>
    <Level>20</Level>
    <CurrentFame>1500</CurrentFame>
    <HasBackpack/>
  </Char>
  <Char id="2">
    <ObjectType>797</ObjectType>
    <Level>5</Level>
    <CurrentFame>12</CurrentFame>
  </Char>
  <Account>
    <AccountId>42</AccountId>
    <Name>Stasher</Name>
  </Account>
</Chars>`

func TestSummarizeCharList(t *testing.T) {
	summary, err := rotmgapi.SummarizeCharList(charListBody)
	require.NoError(t, err)

	assert.Equal(t, "Stasher", summary.AccountName)
	assert.Equal(t, "3", summary.NextCharID)
	assert.Equal(t, "2", summary.MaxChars)
	assert.Equal(t, []rotmgapi.Character{
		{ID: "1", ObjectType: "782", Level: "20", Fame: "1500"},
		{ID: "2", ObjectType: "797", Level: "5", Fame: "12"},
	}, summary.Characters)
}

func TestSummarizeCharListErrors(t *testing.T) {
	_, err := rotmgapi.SummarizeCharList("<Error>Account credentials not valid</Error>")
	require.ErrorContains(t, err, "Account credentials not valid")

	_, err = rotmgapi.SummarizeCharList("nothing here")
	require.Error(t, err)
}
