package lang

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestAsTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{
			name:  "date",
			input: "AS_TIMESTAMP('1/21/22', 'M/d/yy', timezone='America/Denver')",
			want:  1642748400000,
		},
		{
			name:  "utc time",
			input: "AS_TIMESTAMP('1/21/22 13:40:13', 'M/d/yy HH:mm:ss', timezone='UTC')",
			want:  1642772413000,
		},
		{
			name:  "zone name overridden",
			input: "AS_TIMESTAMP('1/21/22 13:40:13 PST', 'M/d/yy HH:mm:ss zzz', timezone='America/Denver')",
			want:  1642797613000,
		},
		{
			name:  "zone name",
			input: "AS_TIMESTAMP('1/21/22 13:40:13 PST', 'M/d/yy HH:mm:ss zzz')",
			want:  1642801213000,
		},
		{
			name:  "four digit year",
			input: "AS_TIMESTAMP('2022 01 21', 'uuuu MM dd', timezone='UTC')",
			want:  1642723200000,
		},
		{
			name:  "quoted literal",
			input: `AS_TIMESTAMP('2022-03-12T13:12:11', 'yyyy-MM-dd\'T\'HH:mm:ss', timezone='America/Denver')`,
			want:  1647115931000,
		},
		{
			name:  "utc offset",
			input: "AS_TIMESTAMP('2022-07-25T12:53:54.097+00:00', 'yyyy-MM-dd\\'T\\'HH:mm:ss.SSSXXX')",
			want:  1658753634097,
		},
		{
			name:  "positive offset",
			input: "AS_TIMESTAMP('2022-07-25T18:23:54.097+05:30', 'yyyy-MM-dd\\'T\\'HH:mm:ss.SSSXXX')",
			want:  1658753634097,
		},
		{
			name:  "negative offset",
			input: "AS_TIMESTAMP('2022-07-25T05:53:54.097-07:00', 'yyyy-MM-dd\\'T\\'HH:mm:ss.SSSXXX')",
			want:  1658753634097,
		},
		{
			name:  "offset ignores timezone",
			input: "AS_TIMESTAMP('2022-07-25T05:53:54.097-07:00', 'yyyy-MM-dd\\'T\\'HH:mm:ss.SSSXXX', timezone='Asia/Tokyo')",
			want:  1658753634097,
		},
		{
			name:  "round to day",
			input: "AS_TIMESTAMP('1/21/22 13:40:13', 'M/d/yy HH:mm:ss', timezone='America/Denver', roundDownTo='day')",
			want:  1642748400000,
		},
		{
			name:  "round to week",
			input: "AS_TIMESTAMP('1/21/22', 'M/d/yy', timezone='America/Denver', locale='en-US', roundDownTo='week')",
			want:  1642316400000,
		},
		{
			name:  "round to week starting monday",
			input: "AS_TIMESTAMP('1/21/22', 'M/d/yy', timezone='America/Denver', locale='en-GB', roundDownTo='week')",
			want:  1642402800000,
		},
		{
			name:  "round to month",
			input: "AS_TIMESTAMP('2/21/22', 'M/d/yy', timezone='America/Denver', roundDownTo='month')",
			want:  1643698800000,
		},
		{
			name:  "round to year",
			input: "AS_TIMESTAMP('2/21/22', 'M/d/yy', timezone='America/Denver', roundDownTo='year')",
			want:  1641020400000,
		},
		{
			name:  "round to quarter across dst",
			input: "AS_TIMESTAMP('8/21/22', 'M/d/yy', timezone='America/Denver', roundDownTo='quarter')",
			want:  1656655200000,
		},
		{
			name:  "round to fourth quarter",
			input: "AS_TIMESTAMP('11/21/22', 'M/d/yy', timezone='America/Denver', roundDownTo='QUARTER')",
			want:  1664604000000,
		},
		{
			name:  "month name",
			input: "AS_TIMESTAMP('21 January 2022', 'd MMMM yyyy', timezone='UTC')",
			want:  1642723200000,
		},
		{
			name:  "localized month name",
			input: "AS_TIMESTAMP('21 janvier 2022', 'd MMMM yyyy', timezone='UTC', locale='fr-FR')",
			want:  1642723200000,
		},
		{
			name:  "twelve hour clock",
			input: "AS_TIMESTAMP('01/21/2022 01:40 PM', 'MM/dd/yyyy hh:mm a', timezone='UTC')",
			want:  1642772400000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Evaluate(t.Context(), tt.input, nil)
			if err != nil {
				t.Fatalf("Evaluate(%q) error = %v", tt.input, err)
			}

			if !Equal(v, NumberFromInt(tt.want)) {
				got := mustNumber(t, v).IntPart()
				t.Errorf("Evaluate() = %d (%s), want %d (%s)", got,
					time.UnixMilli(got).UTC(), tt.want, time.UnixMilli(tt.want).UTC())
			}
		})
	}
}

func TestAsTimestamp_DefaultLocation(t *testing.T) {
	input := "AS_TIMESTAMP('1/21/22', 'M/d/yy', roundDownTo='week')"

	v, err := Evaluate(t.Context(), input, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := time.Date(2022, time.January, 16, 0, 0, 0, 0, time.Local).UnixMilli()
	if !Equal(v, NumberFromInt(want)) {
		t.Errorf("Evaluate() = %s, want %d", Format(v), want)
	}

	denver, err := time.LoadLocation("America/Denver")
	if err != nil {
		t.Fatal(err)
	}

	v, err = Evaluate(t.Context(), "AS_TIMESTAMP('1/21/22', 'M/d/yy')", nil, WithLocation(denver))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if !Equal(v, NumberFromInt(1642748400000)) {
		t.Errorf("Evaluate() = %s, want 1642748400000", Format(v))
	}
}

func TestAsTimestamp_Null(t *testing.T) {
	v, err := Evaluate(t.Context(), "AS_TIMESTAMP(:when, 'M/d/yy')", Environment{"when": nil})
	if err != nil || v != nil {
		t.Errorf("Evaluate() = %s, %v, want null", Format(v), err)
	}
}

func TestAsTimestamp_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"unparsable value", "AS_TIMESTAMP('yesterday', 'M/d/yy')", ErrInvalidTimestamp},
		{"unknown timezone", "AS_TIMESTAMP('1/21/22', 'M/d/yy', timezone='Mars/Olympus')", ErrFunctionArgument},
		{"unknown unit", "AS_TIMESTAMP('1/21/22', 'M/d/yy', roundDownTo='fortnight')", ErrInvalidTimestamp},
		{"unsupported field", "AS_TIMESTAMP('1/21/22', 'M/d/yy G')", ErrInvalidPattern},
		{"unterminated literal", "AS_TIMESTAMP('1/21/22', 'M/d/yy \\'at')", ErrInvalidPattern},
		{"unknown abbreviation", "AS_TIMESTAMP('1/21/22 XYZ', 'M/d/yy zzz')", ErrInvalidTimestamp},
		{"number value", "AS_TIMESTAMP(1, 'M/d/yy')", ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(t.Context(), tt.input, nil)
			if !errors.Is(err, tt.is) {
				t.Errorf("Evaluate(%q) error = %v, want %v", tt.input, err, tt.is)
			}
		})
	}
}

func TestTranslatePattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
		offset  bool
		zone    bool
	}{
		{"M/d/yy", "1/2/06", false, false},
		{"yyyy-MM-dd'T'HH:mm:ss.SSS", "2006-01-02T15:04:05.000", false, false},
		{"EEE, dd MMM yyyy HH:mm:ss Z", "Mon, 02 Jan 2006 15:04:05 -0700", true, false},
		{"EEEE h:mm a zzz", "Monday 3:04 PM MST", false, true},
		{"yyyyMMddHHmmssXXX", "20060102150405Z07:00", true, false},
		{"DDD 'o''clock' ''", "002 o'clock '", false, false},
		{"uuuu MM dd", "2006 01 02", false, false},
		{"y-M-d", "2006-1-2", false, false},
		{"yyyyy", "2006", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got, err := translatePattern(tt.pattern)
			if err != nil {
				t.Fatalf("translatePattern() error = %v", err)
			}

			if got.text != tt.want || got.offset != tt.offset || got.zoneName != tt.zone {
				t.Errorf("translatePattern() = %+v, want {%s %t %t}", got, tt.want, tt.offset, tt.zone)
			}
		})
	}
}
