package provider

import "testing"

func TestToggleActive(t *testing.T) {
	action, payload, affected := ToggleActive("prov-7", true)

	if action != "PATCH /api/v1/admin/providers/prov-7" {
		t.Fatalf("action = %q", action)
	}
	if !payload.Active {
		t.Fatal("payload.Active = false, want true")
	}
	if len(affected) != 1 || affected[0].String() != "providers" {
		t.Fatalf("affected = %v, want exactly the provider list key", affected)
	}
}

func TestImport(t *testing.T) {
	req := ImportRequest{Name: "TopSMM", APIURL: "https://api.topsmm.example/v2", APIKey: "k"}
	action, payload, affected := Import(req)

	if action != "POST /api/v1/admin/providers/import" {
		t.Fatalf("action = %q", action)
	}
	if payload != req {
		t.Fatalf("payload = %+v", payload)
	}
	if len(affected) != 1 || affected[0].String() != "providers" {
		t.Fatalf("affected = %v", affected)
	}
}
