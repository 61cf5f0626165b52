package units

import "testing"

func TestBinarySizeConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  int64
		want int64
	}{
		{"KiB equals 1024", KiB, 1 << 10},
		{"MiB equals 1024*KiB", MiB, 1 << 20},
		{"GiB equals 1024*MiB", GiB, 1 << 30},
		{"TiB equals 1024*GiB", TiB, 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestDefaultSizes(t *testing.T) {
	t.Parallel()

	if DefaultChunkSize != 10*MiB {
		t.Errorf("DefaultChunkSize = %d, want %d", DefaultChunkSize, 10*MiB)
	}

	if DefaultChunkSize%DefaultBlockSize != 0 {
		t.Errorf("DefaultChunkSize %d is not a multiple of DefaultBlockSize %d", DefaultChunkSize, DefaultBlockSize)
	}
}
