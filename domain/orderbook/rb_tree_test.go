package orderbook

import (
	"math/rand"
	"sort"
	"testing"
)

func TestRBTreeInsertFindDelete(t *testing.T) {
	tree := NewRBTree()
	pl1 := tree.GetOrCreate(100)
	if pl1 == nil {
		t.Fatal("GetOrCreate failed")
	}
	if pl2 := tree.Find(100); pl2 != pl1 {
		t.Error("Find did not return same PriceLevel")
	}

	tree.GetOrCreate(200)
	if tree.BestMin().Price != 100 {
		t.Error("expected min=100")
	}
	if tree.BestMax().Price != 200 {
		t.Error("expected max=200")
	}

	if !tree.Delete(100) {
		t.Error("Delete failed")
	}
	if tree.Find(100) != nil {
		t.Error("expected level 100 to be gone")
	}
	if tree.Size() != 1 {
		t.Errorf("expected size 1, got %d", tree.Size())
	}
}

// --- Edge Cases ---

func TestDeleteNonExistentLevel(t *testing.T) {
	tree := NewRBTree()
	if tree.Delete(123) {
		t.Error("expected false when deleting non-existent level")
	}
}

func TestEmptyTreeMinMax(t *testing.T) {
	tree := NewRBTree()
	if tree.BestMin() != nil || tree.BestMax() != nil {
		t.Error("expected nil for min/max on empty tree")
	}
}

func TestGetOrCreateDuplicateLevel(t *testing.T) {
	tree := NewRBTree()
	pl1 := tree.GetOrCreate(150)
	pl2 := tree.GetOrCreate(150)
	if pl1 != pl2 {
		t.Error("GetOrCreate should return the same level for a duplicate price")
	}
	if tree.Size() != 1 {
		t.Errorf("expected size 1, got %d", tree.Size())
	}
}

func TestRBTreeRandomisedOrdering(t *testing.T) {
	tree := NewRBTree()
	rng := rand.New(rand.NewSource(7))
	live := map[uint16]bool{}

	for i := 0; i < 5000; i++ {
		p := uint16(rng.Intn(512))
		if rng.Intn(3) == 0 {
			if tree.Delete(p) != live[p] {
				t.Fatalf("delete %d disagreed with model", p)
			}
			delete(live, p)
			continue
		}
		tree.GetOrCreate(p)
		live[p] = true
	}

	want := make([]int, 0, len(live))
	for p := range live {
		want = append(want, int(p))
	}
	sort.Ints(want)

	var asc []int
	tree.WalkAsc(func(l *PriceLevel) bool {
		asc = append(asc, int(l.Price))
		return true
	})
	if len(asc) != len(want) || tree.Size() != len(want) {
		t.Fatalf("expected %d levels, walked %d, size %d", len(want), len(asc), tree.Size())
	}
	for i := range want {
		if asc[i] != want[i] {
			t.Fatalf("ascending walk mismatch at %d: %d != %d", i, asc[i], want[i])
		}
	}

	var desc []int
	tree.WalkDesc(func(l *PriceLevel) bool {
		desc = append(desc, int(l.Price))
		return true
	})
	for i := range desc {
		if desc[i] != want[len(want)-1-i] {
			t.Fatalf("descending walk mismatch at %d", i)
		}
	}
	checkRedBlack(t, tree)
}

func TestWalkStopsEarly(t *testing.T) {
	tree := NewRBTree()
	for _, p := range []uint16{5, 1, 9, 3} {
		tree.GetOrCreate(p)
	}
	seen := 0
	tree.WalkAsc(func(*PriceLevel) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Errorf("expected walk to stop after 2 levels, saw %d", seen)
	}
}

// checkRedBlack asserts the root is black, no red node has a red child and
// every root-to-leaf path has the same black height.
func checkRedBlack(t *testing.T, tree *RBTree) {
	t.Helper()
	if tree.root.color != black {
		t.Fatal("root must be black")
	}
	var walk func(n *rbNode) int
	walk = func(n *rbNode) int {
		if n == tree.nil {
			return 1
		}
		if n.color == red && (n.left.color == red || n.right.color == red) {
			t.Fatalf("red node %d has a red child", n.key)
		}
		l, r := walk(n.left), walk(n.right)
		if l != r {
			t.Fatalf("black height mismatch under %d: %d != %d", n.key, l, r)
		}
		if n.color == black {
			return l + 1
		}
		return l
	}
	walk(tree.root)
}
