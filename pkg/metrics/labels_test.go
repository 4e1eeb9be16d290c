package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func TestSanitizeRequestLabels(t *testing.T) {
	tests := []struct {
		name string
		in   Labels
		want Labels
	}{
		{
			name: "empty input",
			in:   Labels{},
			want: Labels{},
		},
		{
			name: "nil errorType is removed",
			in:   Labels{"errorType": nil, "route": "/users"},
			want: Labels{"route": "/users"},
		},
		{
			name: "errorType value is kept",
			in:   Labels{"errorType": "Timeout"},
			want: Labels{"errorType": "Timeout"},
		},
		{
			name: "non numeric statusCode is removed",
			in:   Labels{"statusCode": "abc", "status": "failed"},
			want: Labels{"status": "failed"},
		},
		{
			name: "numeric statusCode is kept",
			in:   Labels{"statusCode": 200},
			want: Labels{"statusCode": 200},
		},
		{
			name: "numeric string statusCode keeps its original form",
			in:   Labels{"statusCode": " 404 "},
			want: Labels{"statusCode": " 404 "},
		},
		{
			name: "zero statusCode is kept",
			in:   Labels{"statusCode": 0},
			want: Labels{"statusCode": 0},
		},
		{
			name: "empty statusCode is removed",
			in:   Labels{"statusCode": ""},
			want: Labels{},
		},
		{
			name: "nil statusCode is removed",
			in:   Labels{"statusCode": nil},
			want: Labels{},
		},
		{
			name: "non finite statusCode is removed",
			in:   Labels{"statusCode": math.Inf(1), "mechanism": "grpc"},
			want: Labels{"mechanism": "grpc"},
		},
		{
			name: "NaN statusCode is removed",
			in:   Labels{"statusCode": math.NaN()},
			want: Labels{},
		},
		{
			name: "bool statusCode is removed",
			in:   Labels{"statusCode": true},
			want: Labels{},
		},
		{
			name: "unknown keys pass through",
			in:   Labels{"custom": nil, "other": 1.5},
			want: Labels{"custom": nil, "other": 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeRequestLabels(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SanitizeRequestLabels(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeRequestLabels_DoesNotMutateInput(t *testing.T) {
	in := Labels{"errorType": nil, "statusCode": "abc", "route": "/"}

	out := SanitizeRequestLabels(in)

	if len(in) != 3 {
		t.Fatalf("Expected input to keep 3 keys, got %d", len(in))
	}
	if _, ok := in["errorType"]; !ok {
		t.Error("Expected errorType to remain in the input")
	}
	if len(out) != 1 {
		t.Errorf("Expected 1 key in output, got %d", len(out))
	}
}

func TestPassThrough(t *testing.T) {
	in := Labels{"statusCode": "abc", "errorType": nil}
	if got := PassThrough(in); !reflect.DeepEqual(got, in) {
		t.Errorf("PassThrough changed labels: %v", got)
	}
}

func TestLabels_Resolve(t *testing.T) {
	labels := Labels{
		"status":     "successful",
		"statusCode": 200,
		"errorType":  nil,
		"undeclared": "dropped",
	}

	got := labels.Resolve([]string{"status", "statusCode", "errorType", "route"})
	want := map[string]string{
		"status":     "successful",
		"statusCode": "200",
		"errorType":  "",
		"route":      "",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestLabels_Merge(t *testing.T) {
	base := Labels{"status": "successful", "route": "/a"}

	merged := base.Merge(Labels{"status": "failed"}, Labels{"errorType": "Boom"})

	if merged["status"] != "failed" {
		t.Errorf("Expected later set to win, got %v", merged["status"])
	}
	if merged["errorType"] != "Boom" || merged["route"] != "/a" {
		t.Errorf("Unexpected merge result: %v", merged)
	}
	if base["status"] != "successful" {
		t.Error("Merge mutated its receiver")
	}
}

func TestFormatLabelValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{200, "200"},
		{int64(-3), "-3"},
		{uint8(7), "7"},
		{1.5, "1.5"},
		{float32(0.25), "0.25"},
		{1000000.0, "1000000"},
		{1e21, "1e+21"},
		{true, "true"},
		{StatusFailed, "failed"},
		{2 * time.Second, "2s"},
	}

	for _, tt := range tests {
		if got := FormatLabelValue(tt.in); got != tt.want {
			t.Errorf("FormatLabelValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequestLabels_Labels(t *testing.T) {
	labels := RequestLabels{
		Status:      StatusFailed,
		Mechanism:   MechanismGRPC,
		StatusCode:  13,
		Destination: "users",
		ErrorType:   "Internal",
		Route:       "/users.v1.Users/Get",
	}.Labels()

	want := Labels{
		"status":      "failed",
		"mechanism":   "grpc",
		"statusCode":  13,
		"destination": "users",
		"errorType":   "Internal",
		"route":       "/users.v1.Users/Get",
	}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Labels() = %v, want %v", labels, want)
	}

	if got := (RequestLabels{}).Labels(); len(got) != 0 {
		t.Errorf("Expected zero value to produce no labels, got %v", got)
	}
}
