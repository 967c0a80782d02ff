package manifold

import "testing"

func TestExpandIndexedMesh(t *testing.T) {
	// Two triangles sharing an edge; stride 4 carries one extra property.
	props := []float32{
		0, 0, 0, 9,
		1, 0, 0, 9,
		0, 1, 0, 9,
		1, 1, 0, 9,
	}
	m, err := expand(props, 4, []uint32{0, 1, 2, 1, 3, 2})
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 2 {
		t.Fatalf("triangles = %d, want 2", m.TriangleCount())
	}
	want := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	for i, v := range want {
		if m.Vertices[i] != v {
			t.Fatalf("vertices[%d] = %v, want %v", i, m.Vertices[i], v)
		}
	}
	for i := 0; i < len(m.Normals); i += 3 {
		if m.Normals[i] != 0 || m.Normals[i+1] != 0 || m.Normals[i+2] != 1 {
			t.Errorf("normal %d = %v, want (0,0,1)", i/3, m.Normals[i:i+3])
		}
	}
}

func TestExpandRejectsBadIndex(t *testing.T) {
	if _, err := expand([]float32{0, 0, 0}, 3, []uint32{0, 0, 5}); err == nil {
		t.Error("expected an out of range error")
	}
}
