package htmldom_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamweaver/weaver/sink/htmldom"
)

const doc = `<html><body>
<div id="app">
  <span><!--^count--> 0 <!--/count--></span>
  <div class="box" data-w-class="cls1"></div>
</div>
</body></html>`

func TestParseDiscoversContentBindPoint(t *testing.T) {
	d, err := htmldom.Parse(doc)
	require.NoError(t, err)
	require.True(t, d.HasBindPoint("count"))
	require.True(t, d.HasContent("count"))
}

func TestParseDiscoversAttrBindPoint(t *testing.T) {
	d, err := htmldom.Parse(doc)
	require.NoError(t, err)
	require.True(t, d.HasBindPoint("cls1"))
	require.False(t, d.HasContent("cls1"))
}

func TestSyncReplacesContentRange(t *testing.T) {
	d, err := htmldom.Parse(doc)
	require.NoError(t, err)

	d.Sync("count", "42")

	out, err := d.Render()
	require.NoError(t, err)
	require.Contains(t, out, "<!--^count-->42<!--/count-->")
}

func TestSyncMirrorsIntoAttrBinding(t *testing.T) {
	d, err := htmldom.Parse(doc)
	require.NoError(t, err)

	d.Sync("cls1", "box highlighted")

	out, err := d.Render()
	require.NoError(t, err)
	require.Contains(t, out, `class="box highlighted"`)
}

const nestedDoc = `<html><body>
<div><!--^outer-->
  <span><!--^inner-->x<!--/inner--></span>
<!--/outer--></div>
</body></html>`

func TestIsDescendantNested(t *testing.T) {
	d, err := htmldom.Parse(nestedDoc)
	require.NoError(t, err)

	require.True(t, d.IsDescendant("inner", "outer"))
	require.False(t, d.IsDescendant("outer", "inner"))
}

func TestRescanFindsNewBindMarkersAfterSync(t *testing.T) {
	d, err := htmldom.Parse(doc)
	require.NoError(t, err)

	d.Sync("count", "<!--^fresh-->7<!--/fresh-->")

	require.True(t, d.HasContent("fresh"))
}
