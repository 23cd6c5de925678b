package xmltree

import "testing"

func TestLeafSelfCloses(t *testing.T) {
	n := Leaf("rect").Attr("x", "1").Attr("y", "2")
	got := n.Render()
	want := `<rect x="1" y="2"/>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestNewWithChildren(t *testing.T) {
	n := New("g").Attr("class", "node")
	n.Append(Leaf("rect"))
	n.Append(TextNode("title", "hi"))
	got := n.Render()
	want := `<g class="node"><rect/><title>hi</title></g>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAttrSkipsEmpty(t *testing.T) {
	n := Leaf("path").Attr("d", "M0 0").Attr("class", "")
	got := n.Render()
	want := `<path d="M0 0"/>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAttrSortedOrder(t *testing.T) {
	n := Leaf("rect").Attr("z", "1").Attr("a", "2").Attr("m", "3")
	got := n.Render()
	want := `<rect a="2" m="3" z="1"/>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAttrFFormats(t *testing.T) {
	n := Leaf("rect").AttrF("width", "%.1f", 12.345)
	got := n.Render()
	want := `<rect width="12.3"/>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEscapeText(t *testing.T) {
	n := TextNode("title", "a < b & c > d")
	got := n.Render()
	want := `<title>a &lt; b &amp; c &gt; d</title>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestEscapeAttr(t *testing.T) {
	n := Leaf("a").Attr("href", `"quoted" & <tag>`)
	got := n.Render()
	want := `<a href="&quot;quoted&quot; &amp; &lt;tag&gt;"/>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestLeafWithChildrenDoesNotSelfClose(t *testing.T) {
	n := Leaf("g")
	n.Append(Leaf("rect"))
	got := n.Render()
	want := `<g><rect/></g>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
