package services

import "testing"

func TestIsHandheld(t *testing.T) {
	d := NewPlatformDetector(nil)

	tests := []struct {
		name string
		env  ClientEnv
		want bool
	}{
		{
			name: "android phone",
			env: ClientEnv{
				UserAgent: "Mozilla/5.0 (Linux; Android 12; SM-A125F) AppleWebKit/537.36",
			},
			want: true,
		},
		{
			name: "android without touch info",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (Linux; Android 9; POS-T2) AppleWebKit/537.36",
				MaxTouchPoints: 0,
				ViewportWidth:  0,
			},
			want: true,
		},
		{
			name: "linux webview with touch and small screen",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 5,
				ViewportWidth:  720,
			},
			want: true,
		},
		{
			name: "linux desktop no touch",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 0,
				ViewportWidth:  1920,
			},
			want: false,
		},
		{
			name: "linux touch laptop with large screen",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 10,
				ViewportWidth:  1920,
			},
			want: false,
		},
		{
			name: "linux touch at boundary width",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 2,
				ViewportWidth:  1024,
			},
			want: true,
		},
		{
			name: "linux touch just past boundary",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 2,
				ViewportWidth:  1025,
			},
			want: false,
		},
		{
			name: "linux single touch point",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
				MaxTouchPoints: 1,
				ViewportWidth:  800,
			},
			want: false,
		},
		{
			name: "windows desktop",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
				MaxTouchPoints: 0,
				ViewportWidth:  1920,
			},
			want: false,
		},
		{
			name: "iphone",
			env: ClientEnv{
				UserAgent:      "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)",
				MaxTouchPoints: 5,
				ViewportWidth:  390,
			},
			want: false,
		},
		{
			name: "empty environment",
			env:  ClientEnv{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.IsHandheld(tt.env); got != tt.want {
				t.Errorf("IsHandheld(%+v) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}
