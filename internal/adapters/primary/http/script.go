package http

import "fmt"

// clientScript returns the JavaScript snippet a page includes to receive
// refresh events. It reconnects with a small backoff so restarts of the
// supervised server do not strand the page.
func clientScript(host string, port int) string {
	return fmt.Sprintf(`(function () {
    var endpoint = "ws://%s:%d/ws";
    var retryMs = 1000;

    function connect() {
        var ws = new WebSocket(endpoint);

        ws.onmessage = function (msg) {
            var event;
            try {
                event = JSON.parse(msg.data);
            } catch (e) {
                return;
            }
            if (event.type === "refresh") {
                window.location.reload();
            }
        };

        ws.onclose = function () {
            setTimeout(connect, retryMs);
            retryMs = Math.min(retryMs * 2, 10000);
        };

        ws.onopen = function () {
            retryMs = 1000;
        };
    }

    connect();
})();
`, host, port)
}
