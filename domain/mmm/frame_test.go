package mmm

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHoliday_KeysOnFridayAnchor(t *testing.T) {
	monday := time.Date(2022, time.November, 21, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsHoliday(monday))
	assert.Equal(t, time.Friday, Anchor(monday).Weekday())

	assert.False(t, IsHoliday(monday.AddDate(0, 0, 7)))
	// the holiday itself is not a week start
	assert.False(t, IsHoliday(HolidayDates[1]))
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t, "adwords_spending", ChannelAdwords.Column())
	assert.Equal(t, "tiktok_spending_t_2", ChannelTikTok.LagColumn(2))
	assert.Equal(t, "Sales_t_1", SalesLagColumn(1))
	assert.Equal(t, "unknown", Channel(42).String())

	assert.Equal(t, []string{
		"Date", "Sales", "adwords_spending", "facebookads_spending",
		"awin_spending", "tiktok_spending", "snapchat_spending",
	}, ExportColumns())

	regs := RegressorColumns()
	require.Len(t, regs, NumChannels+2)
	assert.Equal(t, ColumnHoliday, regs[NumChannels])
	assert.Equal(t, ColumnConstant, regs[NumChannels+1])
}

func TestFrame_OrderAndSelect(t *testing.T) {
	table := NewTable(3)
	for i := range table.Records {
		table.Records[i].Date = DefaultStartDate.AddDate(0, 0, 7*i)
		table.Records[i].Sales = float64(100 + i)
		for _, ch := range Channels {
			table.Records[i].Spend[ch] = float64(10 * (i + 1))
		}
	}
	table.Records[1].Spend[ChannelAwin] = math.NaN()
	table.Records[2].Holiday = true

	f := table.Frame()
	assert.Equal(t, 3, f.Rows())
	names := f.Names()
	assert.Equal(t, ColumnSales, names[0])
	assert.Equal(t, ColumnHoliday, names[NumChannels+1])
	assert.Equal(t, ColumnConstant, names[len(names)-1])
	assert.NotContains(t, names, ChannelAdwords.LagColumn(1))

	cols, err := f.Select([]string{ChannelAwin.Column(), ColumnHoliday, ColumnConstant}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0, 30}, cols[0])
	assert.Equal(t, []float64{0, 0, 1}, cols[1])
	assert.Equal(t, []float64{1, 1, 1}, cols[2])

	// selection copies, the table keeps its gap
	assert.True(t, math.IsNaN(table.Records[1].Spend[ChannelAwin]))
	assert.Equal(t, 1, table.MissingSpend(ChannelAwin))
	assert.Equal(t, 1, table.HolidayCount())

	_, err = f.Select([]string{"nope"}, 0)
	assert.Error(t, err)
}
