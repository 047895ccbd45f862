package analysis

import "testing"

func TestDecodeModelJSON(t *testing.T) {
	type payload struct {
		IsOriginal bool `json:"is_original"`
		Confidence int  `json:"confidence"`
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    payload
	}{
		{
			name: "plain object",
			raw:  `{"is_original": true, "confidence": 80}`,
			want: payload{IsOriginal: true, Confidence: 80},
		},
		{
			name: "fenced with language tag",
			raw:  "```json\n{\"is_original\": false, \"confidence\": 90}\n```",
			want: payload{IsOriginal: false, Confidence: 90},
		},
		{
			name: "fenced without language tag",
			raw:  "```\n{\"confidence\": 12}\n```",
			want: payload{Confidence: 12},
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  {\"confidence\": 7}  \n",
			want: payload{Confidence: 7},
		},
		{
			name:    "prose around the object",
			raw:     `Sure! Here is the JSON: {"confidence": 5}`,
			wantErr: true,
		},
		{
			name:    "not json at all",
			raw:     "the answer looks fine to me",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := DecodeModelJSON(tt.raw, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("decoded = %+v, want %+v", got, tt.want)
			}
		})
	}
}
