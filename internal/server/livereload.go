package server

import "net/http"

// liveReloadScript is the client injected into served pages. It reconnects
// after the server restarts so the page picks up the next build.
const liveReloadScript = `(function () {
  var proto = location.protocol === "https:" ? "wss" : "ws";
  function connect() {
    var ws = new WebSocket(proto + "://" + location.host + "/livereload");
    ws.onmessage = function (msg) {
      if (msg.data === "reload") {
        location.reload();
      }
    };
    ws.onclose = function () {
      setTimeout(connect, 1000);
    };
  }
  connect();
})();
`

func handleLiveReloadScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(liveReloadScript))
}
