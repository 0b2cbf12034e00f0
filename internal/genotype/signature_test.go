package genotype

import "testing"

func TestComputeSignatureSummarizesNodes(t *testing.T) {
	a, err := ParseRows([][3]int{{1, 0, 1}, {2, 1, 1}, {1, 2, 2}})
	if err != nil {
		t.Fatalf("parse rows: %v", err)
	}
	sig := ComputeSignature(a)
	if sig.Fingerprint == "" {
		t.Fatal("expected non-empty fingerprint")
	}
	if sig.Summary.TotalNodes != 3 || sig.Summary.CooperateNodes != 2 || sig.Summary.DefectNodes != 1 {
		t.Fatalf("unexpected summary: %+v", sig.Summary)
	}
	if sig.Summary.SelfLoops != 5 {
		t.Fatalf("unexpected self loops: got=%d want=5", sig.Summary.SelfLoops)
	}
	if sig.Summary.Unreachable != 1 {
		t.Fatalf("unexpected unreachable count: got=%d want=1", sig.Summary.Unreachable)
	}
}

func TestComputeSignatureDistinguishesTables(t *testing.T) {
	a, _ := ParseRows([][3]int{{1, 0, 1}, {2, 1, 1}})
	b, _ := ParseRows([][3]int{{1, 0, 1}, {2, 0, 1}})
	if ComputeSignature(a).Fingerprint == ComputeSignature(b).Fingerprint {
		t.Fatal("expected different fingerprints for different transitions")
	}
	if ComputeSignature(a).Fingerprint != ComputeSignature(CloneAutomaton(a)).Fingerprint {
		t.Fatal("expected equal fingerprints for identical tables")
	}
}
