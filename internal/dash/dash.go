package dash

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Store keeps the latest row per instrument for the monitor page.
type Store struct {
	mu   sync.RWMutex
	rows map[string]types.InstrumentRow
}

func NewStore() *Store { return &Store{rows: make(map[string]types.InstrumentRow, 16)} }

func (s *Store) Update(rows []types.InstrumentRow) {
	s.mu.Lock()
	for _, r := range rows {
		s.rows[r.Ticker] = r
	}
	s.mu.Unlock()
}

func (s *Store) List() []types.InstrumentRow {
	s.mu.RLock()
	out := make([]types.InstrumentRow, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

func StartHTTP(ctx context.Context, s *Store, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.List())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: withCORS(mux),
	}

	go func() { <-ctx.Done(); _ = srv.Close() }()

	log.Printf("[dash] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !strings.Contains(err.Error(), "Server closed") {
		log.Printf("[dash] http server error: %v", err)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Volatility Monitor</title>
  <style>
    :root { --bg:#f8fafc; --card:#fff; --muted:#6b7280; --chip:#e5e7eb; }
    body{margin:0;background:var(--bg);font:14px/1.4 ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Ubuntu; color:#111827;}
    .wrap{max-width:1080px;margin:24px auto;padding:0 16px;}
    .hdr{display:flex;align-items:flex-end;justify-content:space-between;margin-bottom:12px;}
    .state{font-size:12px;padding:2px 8px;border-radius:999px;background:#d1fae5;color:#065f46;}
    table{width:100%;border-collapse:collapse;background:var(--card);border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,.06);}
    thead{background:#f3f4f6;} th,td{padding:12px 14px;text-align:left;} tbody tr{border-top:1px solid #f3f4f6;}
    .chip{display:inline-block;font-size:12px;padding:2px 8px;background:var(--chip);border-radius:999px;color:#374151;}
    .pct{padding:2px 8px;border-radius:8px;font-size:12px;}
    .pct.ok{background:#dcfce7;color:#166534;} .pct.bad{background:#fee2e2;color:#991b1b;} .pct.dim{background:#f3f4f6;color:#6b7280;}
    .sub{color:var(--muted);font-size:12px;margin:0;}
  </style>
</head>
<body>
<div class="wrap">
  <div class="hdr">
    <div>
      <h1 style="margin:0;font-size:22px;font-weight:600">Volatility Monitor</h1>
      <p class="sub">Market vs Black-Scholes, per instrument</p>
    </div>
    <div id="state" class="state">live</div>
  </div>
  <table>
    <thead>
      <tr>
        <th>Ticker</th><th>State</th>
        <th>Bid / Ask</th><th>Theo</th><th>&Delta;</th>
        <th>Edge</th><th>Position</th><th style="text-align:right">Tick</th>
      </tr>
    </thead>
    <tbody id="rows"></tbody>
  </table>
  <p class="sub" style="margin-top:8px">Edge = theoretical value &minus; market mid. The underlying row shows net book delta in the &Delta; column.</p>
</div>
<script>
  function px(x){ return (x==null||isNaN(x)) ? '—' : Number(x).toFixed(2); }
  function edge(x){ return (x==null||isNaN(x)) ? '—' : Number(x).toFixed(3); }
  function rowHTML(r){
    var e = r.magnitude||0;
    var cls = Math.abs(e) < 0.04 ? 'dim' : (e > 0 ? 'ok' : 'bad');
    return '<tr>'
      + '<td><strong>' + (r.ticker||'') + '</strong></td>'
      + '<td><span class="chip">' + (r.state||'') + '</span></td>'
      + '<td>' + px(r.bid) + ' <span style="color:#9CA3AF">/</span> ' + px(r.ask) + '</td>'
      + '<td>' + px(r.theo) + '</td>'
      + '<td>' + edge(r.delta) + '</td>'
      + '<td><span class="pct ' + cls + '">' + edge(r.magnitude) + '</span></td>'
      + '<td>' + (r.position||0) + '</td>'
      + '<td style="text-align:right;color:#6B7280;font-size:12px">' + (r.tick||0) + '</td>'
      + '</tr>';
  }
  async function tick(){
    try{
      var res = await fetch('/api/dash', {cache:'no-store'});
      if(!res.ok) throw new Error('status '+res.status);
      var data = await res.json();
      document.getElementById('state').textContent = 'live';
      document.getElementById('rows').innerHTML = data.map(rowHTML).join('');
    }catch(e){
      document.getElementById('state').textContent = 'offline';
    }
  }
  tick(); setInterval(tick, 1000);
</script>
</body>
</html>`
