package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vet-clinic/internal/router"
)

func TestHTTP_EndToEnd_ClinicFlow(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}).Handler)
	defer ts.Close()

	admin := debugUser{ID: "admin-1", Role: "ADMIN"}
	staff := debugUser{ID: "staff-1", Role: "ADMINISTRATIVO"}
	vet := debugUser{ID: "vet-1", Role: "VETERINARIO"}
	cliente := debugUser{ID: "cliente-1", Role: "PROPIETARIO"}

	// Sin autenticar no se opera.
	{
		st, _ := doReq(t, ts.URL, "POST", "/owners", debugUser{}, map[string]any{"full_name": "x"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", st)
		}
	}

	// 1) Recepción registra propietario y mascota. El teléfono va en
	// dígitos: con formato ("+51 999 ...") se rechaza.
	{
		st, _ := doReq(t, ts.URL, "POST", "/owners", staff, map[string]any{
			"user_id":   cliente.ID,
			"full_name": "María Martínez",
			"documento": "45678123",
			"phone":     "+51 999 888 777",
			"email":     "maria@example.com",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for formatted phone, got %d", st)
		}
	}
	ownerID := createResource(t, ts.URL, staff, "/owners", map[string]any{
		"user_id":   cliente.ID,
		"full_name": "María Martínez",
		"documento": "45678123",
		"phone":     "51999888777",
		"email":     "maria@example.com",
	})
	petID := createResource(t, ts.URL, staff, "/pets", map[string]any{
		"owner_id":  ownerID,
		"name":      "Milo",
		"species":   "PERRO",
		"breed":     "mestizo",
		"sex":       "M",
		"age_years": 4,
	})

	// 2) Solo ADMIN gestiona el catálogo.
	{
		st, _ := doReq(t, ts.URL, "POST", "/services", staff, map[string]any{
			"type": "CONSULTA", "duration_minutes": 30,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 creating service as staff, got %d", st)
		}
	}
	serviceID := createResource(t, ts.URL, admin, "/services", map[string]any{
		"type":             "CONSULTA",
		"duration_minutes": 30,
		"price_cents":      50_00,
	})

	// 3) Agendar cita en horario laboral (lunes 10:00).
	apptPayload := map[string]any{
		"owner_id":   ownerID,
		"pet_id":     petID,
		"service_id": serviceID,
		"vet_id":     vet.ID,
		"fecha":      "2027-03-08",
		"hora":       "10:00",
	}
	apptID := createResource(t, ts.URL, staff, "/appointments", apptPayload)

	// 4) El mismo slot (vet, fecha, hora) no se repite.
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments", staff, apptPayload)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate slot, got %d body=%s", st, string(body))
		}
	}

	// 5) Reglas de agenda: domingo y fuera de horario => 422.
	{
		bad := map[string]any{
			"owner_id": ownerID, "pet_id": petID, "service_id": serviceID,
			"vet_id": vet.ID, "fecha": "2027-03-07", "hora": "10:00",
		}
		st, _ := doReq(t, ts.URL, "POST", "/appointments", staff, bad)
		if st != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for sunday, got %d", st)
		}

		bad["fecha"] = "2027-03-08"
		bad["hora"] = "07:00"
		st, _ = doReq(t, ts.URL, "POST", "/appointments", staff, bad)
		if st != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 before opening, got %d", st)
		}
	}

	// 6) El propietario ve solo su propia agenda.
	{
		st, _ := doReq(t, ts.URL, "GET", "/appointments?owner_id="+ownerID, cliente, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing own appointments, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/appointments?owner_id=otro-owner", cliente, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 listing foreign appointments, got %d", st)
		}
	}

	// 7) Recepción confirma la cita.
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments/"+apptID+"/confirm", staff, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 confirm, got %d body=%s", st, string(body))
		}
	}

	// 8) El veterinario registra la consulta; la cita queda COMPLETADA.
	createResource(t, ts.URL, vet, "/records", map[string]any{
		"appointment_id": apptID,
		"motivo":         "control anual",
		"diagnostico":    "paciente sano",
	})
	{
		st, body := doReq(t, ts.URL, "GET", "/appointments/"+apptID, staff, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get appointment, got %d", st)
		}
		var resp struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "COMPLETADA" {
			t.Fatalf("expected COMPLETADA after record, got %s", resp.Status)
		}
	}

	// 9) Caja cobra y emite la primera factura.
	{
		st, body := doReq(t, ts.URL, "POST", "/payments", staff, map[string]any{
			"appointment_id": apptID,
			"amount_cents":   50_00,
			"method":         "EFECTIVO",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 payment, got %d body=%s", st, string(body))
		}
		var resp struct {
			Status  string `json:"status"`
			Invoice *struct {
				Number string `json:"number"`
			} `json:"invoice"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "COMPLETADO" || resp.Invoice == nil {
			t.Fatalf("expected completed payment with invoice, body=%s", string(body))
		}
		if resp.Invoice.Number != "F-000001" {
			t.Fatalf("expected invoice F-000001, got %s", resp.Invoice.Number)
		}
	}

	// 10) El propietario consulta el historial de su mascota.
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/records", cliente, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 pet history for owner, got %d body=%s", st, string(body))
		}
	}

	// 11) El propietario no toca la lista de espera.
	{
		st, _ := doReq(t, ts.URL, "POST", "/waitlist", cliente, map[string]any{
			"pet_id": petID, "service_id": serviceID, "priority": 3,
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 waitlist as owner, got %d", st)
		}
	}
}

func TestHTTP_Login_LockoutAndUnlock(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}).Handler)
	defer ts.Close()

	admin := debugUser{ID: "admin-1", Role: "ADMIN"}

	userID := createResource(t, ts.URL, admin, "/auth/users", map[string]any{
		"username":  "mmartinez",
		"email":     "mmartinez@clinica.pe",
		"full_name": "María Martínez",
		"password":  "correcta-123",
		"role":      "ADMINISTRATIVO",
	})

	login := func(password string) int {
		st, _ := doReq(t, ts.URL, "POST", "/auth/login", debugUser{}, map[string]any{
			"username": "mmartinez",
			"password": password,
		})
		return st
	}

	if st := login("correcta-123"); st != http.StatusOK {
		t.Fatalf("expected 200 initial login, got %d", st)
	}

	// Cinco intentos fallidos consecutivos bloquean la cuenta.
	for i := 0; i < 5; i++ {
		if st := login("incorrecta"); st != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, st)
		}
	}
	if st := login("correcta-123"); st != http.StatusForbidden {
		t.Fatalf("expected 403 while locked even with right password, got %d", st)
	}

	// Override administrativo: desbloquea y el login vuelve a funcionar.
	{
		st, body := doReq(t, ts.URL, "POST", "/auth/users/"+userID+"/unlock", admin, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 unlock, got %d body=%s", st, string(body))
		}
	}
	if st := login("correcta-123"); st != http.StatusOK {
		t.Fatalf("expected 200 login after unlock, got %d", st)
	}
}

type debugUser struct {
	ID   string
	Role string
}

func createResource(t *testing.T, baseURL string, as debugUser, path string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, as, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating %s, got %d body=%s", path, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create %s: missing id body=%s", path, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, as debugUser, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.ID != "" {
		req.Header.Set("X-Debug-User-ID", as.ID)
		req.Header.Set("X-Debug-Role", as.Role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
