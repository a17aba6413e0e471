package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/restaurant-cli/internal/model"
	"github.com/sells-group/restaurant-cli/internal/region"
)

const sampleCSV = `name,category,address,latitude,longitude,description,tags,image_url,total_review_count,price_range,Convenience
땀땀,아시안,서울 강남구 강남대로98길 12-5,37.50078426,127.028401,"강남역 웨이팅 필수, 얼큰한 매운 소곱창 쌀국수의 원조 맛집",#이색데이트 #모임 #힙한 #특별한메뉴 #가성비,/images/땀땀.jpg,3574,1.5만 원대,#유아의자 #키즈메뉴 #단체석있음 #주차가능 #내부화장실
정식당,한식(파인다이닝),서울 강남구 선릉로158길 11,37.52559853,127.0406192,"미쉐린 2스타, 현대적으로 재해석한 창의적인 코리안 파인다이닝",#회식 #친구 #편안한 #재료신선 #고급스러운,/images/정식당.jpg,244,10만 원대,#발렛파킹 #주차가능 #넓은좌석간격 #내부화장실 #휠체어가능
연남동 파스타,양식,서울 마포구 연남로 1,37.56,126.92,,#데이트,,"1,204",,
을지로 노가리,주점,서울 중구 을지로13길 19,,,,,,,,
상계 국밥,한식,서울 노원구 동일로 1414,37.65,127.06,,,,abc,,
`

func readSample(t *testing.T, content string) *Table {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restaurants.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	tbl, err := ReadFile(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	return tbl
}

func TestConvert_Sample(t *testing.T) {
	tbl := readSample(t, sampleCSV)

	records, stats, err := NewConverter(nil).Convert(context.Background(), tbl.Header, tbl.Rows)
	require.NoError(t, err)
	require.Len(t, records, 5)

	first := records[0]
	assert.Equal(t, "땀땀", first.Name)
	assert.Equal(t, "강남", first.Region)
	assert.InDelta(t, 37.50078426, first.Latitude, 1e-9)
	assert.InDelta(t, 127.028401, first.Longitude, 1e-9)
	assert.Equal(t, 3574, first.ReviewCount)
	assert.Equal(t, "강남역 웨이팅 필수, 얼큰한 매운 소곱창 쌀국수의 원조 맛집", first.Description)
	assert.Equal(t, "1.5만 원대", first.PriceRange)
	assert.Equal(t, "#유아의자 #키즈메뉴 #단체석있음 #주차가능 #내부화장실", first.Convenience)

	assert.Equal(t, "홍대/연남", records[2].Region)
	assert.Equal(t, 1204, records[2].ReviewCount)

	assert.Equal(t, "종로/을지로", records[3].Region)
	assert.False(t, records[3].HasLocation())

	assert.Equal(t, region.Fallback, records[4].Region)
	assert.Equal(t, 0, records[4].ReviewCount)

	assert.Equal(t, 5, stats.Rows)
	assert.Equal(t, 5, stats.Converted)
	assert.Equal(t, map[string]int{"강남": 2, "홍대/연남": 1, "종로/을지로": 1, region.Fallback: 1}, stats.ByRegion)
}

func TestConvert_MissingAddressFallsBack(t *testing.T) {
	header := []string{"name", "address"}
	rows := [][]string{
		{"짧은행"},
		{"빈주소", ""},
	}
	records, _, err := NewConverter(nil).Convert(context.Background(), header, rows)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, region.Fallback, r.Region)
		assert.Empty(t, r.Address)
	}
}

func TestConvert_SkipsNamelessAndDuplicates(t *testing.T) {
	header := []string{"Name", " ADDRESS "}
	rows := [][]string{
		{"", "서울 강남구"},
		{"땀땀", "서울 강남구 강남대로98길 12-5"},
		{"땀땀", "서울 강남구 강남대로98길 12-5"},
		{"땀땀", "서울 마포구"},
	}
	c := NewConverter(nil)
	records, stats, err := c.Convert(context.Background(), header, rows)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Duplicates)

	// Dedup spans calls on the same converter.
	more, stats, err := c.Convert(context.Background(), header, rows[1:2])
	require.NoError(t, err)
	assert.Empty(t, more)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestConvert_KoreanHeaders(t *testing.T) {
	header := []string{"상호명", "주소", "위도", "경도", "리뷰수"}
	rows := [][]string{{"성수 카페", "서울 성동구 연무장길 1", "37.54", "127.05", "12"}}
	records, _, err := NewConverter(nil).Convert(context.Background(), header, rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "성수", records[0].Region)
	assert.Equal(t, 12, records[0].ReviewCount)
}

func TestConvert_CustomClassifier(t *testing.T) {
	c := region.NewClassifier(region.Mapping{{District: "해운대구", Region: "해운대"}}, "other")
	header := []string{"name", "address"}
	rows := [][]string{{"a", "부산 해운대구"}, {"b", "서울 강남구"}}
	records, _, err := NewConverter(c).Convert(context.Background(), header, rows)
	require.NoError(t, err)
	assert.Equal(t, "해운대", records[0].Region)
	assert.Equal(t, "other", records[1].Region)
}

func TestConvert_MissingColumns(t *testing.T) {
	_, _, err := NewConverter(nil).Convert(context.Background(), []string{"name"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"address"`)

	_, _, err = NewConverter(nil).Convert(context.Background(), []string{"address"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"name"`)
}

func TestConvert_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewConverter(nil).Convert(ctx, []string{"name", "address"}, [][]string{{"a", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3574", 3574},
		{"1,204", 1204},
		{"12.0", 12},
		{"", 0},
		{"-5", 0},
		{"many", 0},
		{"1e3", 1000},
		{"1e30", 0},
		{"9999999999", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCount(tt.in, 0))
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"37.5", 37.5},
		{"", 0},
		{"north", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"+Inf", 0},
		{"-Infinity", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFloat(tt.in, "latitude", 0))
		})
	}
}

func TestConvert_NonFiniteNumbersStillEncode(t *testing.T) {
	header := []string{"name", "address", "latitude", "longitude", "total_review_count"}
	rows := [][]string{{"땀땀", "서울 강남구 강남대로98길 12-5", "NaN", "Inf", "1e30"}}

	records, stats, err := NewConverter(nil).Convert(context.Background(), header, rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, stats.Converted)
	assert.Zero(t, records[0].Latitude)
	assert.Zero(t, records[0].Longitude)
	assert.Zero(t, records[0].ReviewCount)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "강남", loaded[0].Region)
}

func TestStats_Add(t *testing.T) {
	var s Stats
	s.Add(Stats{Rows: 2, Converted: 1, Skipped: 1, ByRegion: map[string]int{"강남": 1}})
	s.Add(Stats{Rows: 1, Converted: 1, Duplicates: 0, ByRegion: map[string]int{"강남": 1, "성수": 1}})
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, 2, s.Converted)
	assert.Equal(t, map[string]int{"강남": 2, "성수": 1}, s.ByRegion)
}

func TestReadFile_TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.tsv")
	require.NoError(t, os.WriteFile(path, []byte("name\taddress\na\t서울 송파구\n"), 0o644))
	tbl, err := ReadFile(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "address"}, tbl.Header)
	assert.Equal(t, [][]string{{"a", "서울 송파구"}}, tbl.Rows)
}

func TestReadFile_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, r := range [][]string{{"name", "address"}, {"a", "서울 영등포구 여의대로 108"}} {
		row := sheet.AddRow()
		for _, c := range r {
			row.AddCell().SetString(c)
		}
	}
	path := filepath.Join(t.TempDir(), "r.xlsx")
	require.NoError(t, f.Save(path))

	tbl, err := ReadFile(context.Background(), path, ReadOptions{})
	require.NoError(t, err)
	records, _, err := NewConverter(nil).Convert(context.Background(), tbl.Header, tbl.Rows)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "여의도", records[0].Region)
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(context.Background(), filepath.Join(dir, "x.json"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.csv"), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert: open")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = ReadFile(context.Background(), empty, ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestReadFiles_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.csv", "a.csv", "b.csv"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("name,address\n"+name+",서울\n"), 0o644))
		paths = append(paths, p)
	}

	tables, err := ReadFiles(context.Background(), paths, ReadOptions{}, 2)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	for i, tbl := range tables {
		assert.Equal(t, paths[i], tbl.Path)
		assert.Equal(t, filepath.Base(paths[i]), tbl.Rows[0][0])
	}
}

func TestReadFiles_Error(t *testing.T) {
	_, err := ReadFiles(context.Background(), []string{filepath.Join(t.TempDir(), "nope.csv")}, ReadOptions{}, 0)
	require.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, []model.Restaurant{{Name: "땀땀", Region: "강남", ImageURL: "/a&b.jpg"}}))
	out := buf.String()
	assert.Contains(t, out, `"region": "강남"`)
	assert.Contains(t, out, `"/a&b.jpg"`)
	assert.True(t, strings.HasPrefix(out, "[\n  {"))
}

func TestWriteJSONFile_LoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := []model.Restaurant{
		{Name: "땀땀", Address: "서울 강남구", Region: "강남", ReviewCount: 3574},
		{Name: "국밥", Address: "서울 노원구", Region: region.Fallback},
	}
	require.NoError(t, WriteJSONFile(path, in))

	got, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestLoadJSON_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadJSON(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = LoadJSON(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
