package logx

import "testing"

// These only exercise that each level routes without panicking; glog writes
// to its own configured sink, which test runs don't inspect.
func TestLogfRoutesEveryLevelWithoutPanicking(t *testing.T) {
	l := Default()
	l.Logf(Instantiate, Trace, "instantiating %s", "Box<int>")
	l.Logf(Lower, Debug, "lowering %d expressions", 3)
	l.Logf(Mangle, Info, "mangled name %s", "_ZN3Box3getEv")
	l.Logf(Overload, Warning, "ambiguous call to %s", "f")
	l.Logf(Layout, Error, "layout failed for %s", "Widget")
}

func TestPerLevelHelpersDelegateToLogf(t *testing.T) {
	l := Default()
	l.Tracef(Template, "binding %s", "T")
	l.Debugf(Template, "binding %s", "T")
	l.Infof(Template, "binding %s", "T")
	l.Warningf(Template, "binding %s", "T")
	l.Errorf(Template, "binding %s", "T")
}
