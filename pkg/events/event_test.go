package events

import "testing"

func TestDocIdStable(t *testing.T) {
	ref := SourceRef{Provider: "gcs", Bucket: "bucket", Key: "pdfs/a.pdf"}
	first := ref.DocId()
	second := ref.DocId()

	if first != second {
		t.Fatalf("DocId not stable: %s vs %s", first, second)
	}
	if len(first) != 32 {
		t.Errorf("DocId length = %d, want 32", len(first))
	}
}

func TestDocIdDistinguishesFields(t *testing.T) {
	base := SourceRef{Provider: "gcs", Bucket: "bucket", Key: "a.pdf"}

	variants := []SourceRef{
		{Provider: "s3", Bucket: "bucket", Key: "a.pdf"},
		{Provider: "gcs", Bucket: "other", Key: "a.pdf"},
		{Provider: "gcs", Bucket: "bucket", Key: "b.pdf"},
		{Provider: "gcs", Bucket: "bucket", Key: "a.pdf", Version: "2"},
	}

	for _, v := range variants {
		if v.DocId() == base.DocId() {
			t.Errorf("DocId collision between %+v and %+v", base, v)
		}
	}
}

func TestDocIdNoConcatenationCollision(t *testing.T) {
	// ("ab","c") and ("a","bc") must not hash to the same id.
	a := SourceRef{Provider: "p", Bucket: "ab", Key: "c"}
	b := SourceRef{Provider: "p", Bucket: "a", Key: "bc"}
	if a.DocId() == b.DocId() {
		t.Error("field boundaries are not separated in the hash input")
	}
}

func TestPartitionStable(t *testing.T) {
	ref := SourceRef{Provider: "minio", Bucket: "pdfs", Key: "doc.pdf"}
	docId := ref.DocId()

	first := Partition(docId, 8)
	for i := 0; i < 100; i++ {
		if got := Partition(docId, 8); got != first {
			t.Fatalf("Partition not stable: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 8 {
		t.Errorf("Partition = %d, want in [0,8)", first)
	}
}

func TestPartitionSingle(t *testing.T) {
	if got := Partition("anything", 1); got != 0 {
		t.Errorf("Partition(_, 1) = %d, want 0", got)
	}
	if got := Partition("anything", 0); got != 0 {
		t.Errorf("Partition(_, 0) = %d, want 0", got)
	}
}
