package uitree

import "strings"

// launcherPackages are foreground apps that mean the device is on its home screen.
var launcherPackages = map[string]bool{
	"com.google.android.apps.nexuslauncher": true,
	"com.android.launcher":                  true,
	"com.android.launcher2":                 true,
	"com.android.launcher3":                 true,
	"com.sec.android.app.launcher":          true,
	"com.miui.home":                         true,
	"com.huawei.android.launcher":           true,
	"com.oppo.launcher":                     true,
	"com.bbk.launcher2":                     true,
	"com.microsoft.launcher":                true,
}

// IsLauncher reports whether app is a home-screen launcher.
func IsLauncher(app string) bool {
	return launcherPackages[app] || strings.HasSuffix(app, ".launcher")
}

// ScreenContext is the sentence that replaces the key of a rotation-bearing
// root in the serialized tree.
func ScreenContext(app string) string {
	if app == "" || IsLauncher(app) {
		return "This is the home screen view."
	}
	return "The current APP is " + app + "."
}

// DetectApp returns the package of the first node that declares one,
// skipping the system UI overlay.
func DetectApp(t *Tree) string {
	app := ""
	t.Walk(func(_ int, n *Node) bool {
		if app != "" {
			return false
		}
		if pkg := n.Attr(AttrPackage); pkg != "" && pkg != "com.android.systemui" {
			app = pkg
			return false
		}
		return true
	})
	return app
}

// ScreenBounds returns the union of the top-level node bounds, which is the
// device screen for a full-screen dump. It is the zero Rect when no top-level
// node has valid bounds.
func ScreenBounds(t *Tree) Rect {
	var screen Rect
	for _, c := range t.Node(t.Root()).Children {
		b := t.Node(c).Bounds
		if !b.Valid() {
			continue
		}
		if !screen.Valid() {
			screen = b
			continue
		}
		screen = Rect{
			X1: min(screen.X1, b.X1),
			Y1: min(screen.Y1, b.Y1),
			X2: max(screen.X2, b.X2),
			Y2: max(screen.Y2, b.Y2),
		}
	}
	return screen
}
